package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Notification is the HTML body of a notification email. All text is escaped;
// the message keeps its line breaks.
func Notification(title, appName, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		heading := title
		if appName != "" {
			heading += " (" + appName + ")"
		}
		_, err := io.WriteString(w, `<!doctype html>
<html>
  <body style="font-family: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Arial; line-height: 1.4;">
    <div style="max-width: 640px; margin: 0 auto; padding: 16px;">
      <h2 style="margin: 0 0 8px;">`+templ.EscapeString(heading)+`</h2>
      <p style="margin: 0; color: #334155; white-space: pre-wrap;">`+templ.EscapeString(message)+`</p>
    </div>
  </body>
</html>`)
		return err
	})
}

// NotificationText is the plain-text alternative of Notification.
func NotificationText(title, appName, message string) string {
	if appName != "" {
		title += " (" + appName + ")"
	}
	return title + "\n\n" + message
}
