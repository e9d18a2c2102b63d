package main

import (
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"dmchat/domain"
)

// renderContacts prints the sidebar: one row per contact with its latest
// relevant message, the selected contact marked with an arrow.
func renderContacts(contacts []domain.User, preview func(uid string) string, selectedUID string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"", "Contact", "Last message"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, contact := range contacts {
		marker := ""
		if contact.UID == selectedUID {
			marker = ">"
		}
		table.Append([]string{marker, contact.Username, preview(contact.UID)})
	}
	table.Render()
}

// renderThread prints the full conversation, latest message last. Own
// messages are highlighted, attachments show their one-line summary.
func renderThread(self domain.Identity, contact domain.User, messages []domain.Message) {
	header := color.New(color.BgBlack, color.FgCyan).Render(fmt.Sprintf(" Chat with %s ", contact.Username))
	fmt.Fprintf(os.Stdout, "\n%s\n", header)

	for _, message := range messages {
		line := message.Content
		if message.Type == domain.TypeFile {
			line = message.Summary()
			if message.IsImage() {
				line += " (image)"
			}
		}

		stamp := message.SentAt.Format("15:04")
		if message.SenderUID == self.UID {
			fmt.Fprintf(os.Stdout, "  %s %s\n", stamp, color.FgGreen.Render("me: "+line))
		} else {
			fmt.Fprintf(os.Stdout, "  %s %s: %s\n", stamp, message.SenderUsername, line)
		}
	}
}
