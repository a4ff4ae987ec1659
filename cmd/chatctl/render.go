package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/Tyrowin/relaychat/internal/channel"
	"github.com/Tyrowin/relaychat/internal/server"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

func renderChannels(w io.Writer, channels []channel.Channel) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Messages"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, ch := range channels {
		table.Append([]string{
			strconv.FormatInt(int64(ch.ID), 10),
			ch.Name,
			strconv.Itoa(len(ch.Messages)),
		})
	}
	table.Render()
}

// formatFrame renders a relayed frame as one line. Frames that are not chat
// messages are printed as received.
func formatFrame(data []byte, names map[channel.ID]string) string {
	var frame struct {
		Type      string     `json:"type"`
		ChannelID channel.ID `json:"channelId"`
		UserName  string     `json:"userName"`
		Text      string     `json:"text"`
		Message   string     `json:"message"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		return string(data)
	}

	switch frame.Type {
	case server.FrameTypeMessage:
		label := fmt.Sprintf("#%d", frame.ChannelID)
		if name, ok := names[frame.ChannelID]; ok {
			label = "#" + name
		}
		return fmt.Sprintf("%s %s %s",
			color.Cyan.Render(label),
			color.New(color.FgGreen, color.OpBold).Render(frame.UserName+":"),
			frame.Text,
		)
	case server.FrameTypeError:
		return color.Red.Render("error: " + frame.Message)
	default:
		return string(data)
	}
}
