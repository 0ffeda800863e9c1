// Package redact strips credentials and other sensitive fragments from strings
// before they are logged or echoed back in error responses. Error text coming
// out of the database driver or the Telegram client routinely embeds
// connection strings, bot tokens and SQL, none of which belong in a log line.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedBotTokenPlaceholder   = "[REDACTED_BOT_TOKEN]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// botTokenRegex matches Telegram bot tokens: a numeric bot ID, a colon and a
// 30+ character secret.
var botTokenRegex = regexp.MustCompile(`\d{5,15}:[A-Za-z0-9_-]{30,}`)

// Rules run in order; the bot token rule must precede the generic key rule so
// Telegram URLs keep a recognizable shape.
var rules = []rule{
	{botTokenRegex, RedactedBotTokenPlaceholder},
	{regexp.MustCompile(`(?i)(postgres|postgresql|redis|mysql)://[^@\s]+@`), RedactedCredentialPlaceholder},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`), RedactedCredentialPlaceholder},
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), RedactedJWTPlaceholder},
	{regexp.MustCompile(`(?i)(api[_-]?key|secret|bearer)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), RedactedKeyPlaceholder},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), RedactedEmailPlaceholder},
	{
		regexp.MustCompile(
			`(?i)(SELECT|INSERT|UPDATE|DELETE)[\s\w,*()]+(?:FROM|INTO|SET)(?:[\s\w,*()='"$]+)?`,
		),
		RedactedSQLPlaceholder,
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// BotToken replaces only Telegram bot tokens, leaving the rest of the text
// untouched. Used where the remaining text is shown to the token's owner.
func BotToken(input string) string {
	return botTokenRegex.ReplaceAllString(input, RedactedBotTokenPlaceholder)
}
