package mail

import (
	"fmt"

	"bloghub/internal/markdown"
)

// ResetSubject is the subject line of the password-reset email.
const ResetSubject = "Password reset request"

// ResetEmail renders the password-reset message for name with the one-time
// link. The link is only valid for validFor.
func ResetEmail(name, link, validFor string) (string, error) {
	src := fmt.Sprintf(`Hello %s,

You requested a password reset. Use the link below to choose a new password:

[Reset your password](%s)

The link expires in %s and can be used once. If you did not ask for this, ignore this email.
`, markdown.Escape(name), link, validFor)

	html, err := markdown.ToHTML(src)
	if err != nil {
		return "", fmt.Errorf("render reset email: %w", err)
	}
	return html, nil
}
