package service

import "fmt"

func welcomeEmailTemplate(name, appURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Hi %s,

Your account is ready. Upload your first file and share it with a public link whenever you need to.

Get started: %s

Best,
The %s Team`, name, appURL, appName)

	return subject, body
}

func accountDeletedEmailTemplate(name, appName string) (string, string) {
	subject := fmt.Sprintf("Your %s account has been deleted", appName)
	body := fmt.Sprintf(`Hi %s,

Your account has been permanently deleted from %s.

All your files and folders have been removed from our storage, and any public links you shared no longer work.

If you didn't request this deletion, please contact our support team immediately, though we won't be able to recover your account.

Best,
The %s Team`, name, appName, appName)

	return subject, body
}
