package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/soulsync/internal/chat"
)

type chatModel struct {
	session *chat.Session
	width   int
	height  int

	input   textinput.Model
	focused bool
	pending bool

	transcript []chat.Message
	lastErr    string
}

func newChatModel(s *chat.Session) chatModel {
	in := textinput.New()
	in.Placeholder = "Ask about your feelings, or anything on your mind..."
	in.CharLimit = 2000
	in.Width = 60
	in.Prompt = "> "

	return chatModel{session: s, input: in}
}

func (c *chatModel) setSize(w, h int) {
	c.width = w
	c.height = h
	c.input.Width = max(20, w-12)
}

func (c chatModel) capturing() bool {
	return c.focused
}

type chatReplyMsg struct {
	reply chat.Message
	err   error
}

func (c chatModel) send(text string) tea.Cmd {
	s := c.session
	return func() tea.Msg {
		reply, err := s.Send(context.Background(), text)
		return chatReplyMsg{reply: reply, err: err}
	}
}

func (c chatModel) update(msg tea.Msg) (chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case chatReplyMsg:
		c.pending = false
		c.transcript = c.session.Transcript()
		c.lastErr = ""
		if msg.err != nil {
			c.lastErr = chatErrorText(msg.err)
		}
		return c, nil

	case tea.KeyMsg:
		if !c.focused {
			if msg.String() == "enter" {
				c.focused = true
				return c, c.input.Focus()
			}
			return c, nil
		}
		switch msg.String() {
		case "esc":
			c.focused = false
			c.input.Blur()
			return c, nil
		case "enter":
			text := strings.TrimSpace(c.input.Value())
			if text == "" || c.pending {
				return c, nil
			}
			c.input.Reset()
			c.pending = true
			c.transcript = append(c.session.Transcript(), chat.Message{Role: chat.RoleUser, Content: text})
			return c, c.send(text)
		}
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		return c, cmd
	}
	return c, nil
}

func chatErrorText(err error) string {
	switch {
	case errors.Is(err, chat.ErrMissingAPIKey):
		return "Add an OpenRouter API key in Settings to use the assistant."
	default:
		return "Chat error: " + err.Error()
	}
}

func (c chatModel) view() string {
	w := c.width - 4
	bubbleWidth := max(20, w-10)

	rows := []string{titleStyle.Render("Chat"), ""}
	if len(c.transcript) == 0 {
		rows = append(rows, mutedStyle.Render("Start a conversation with your journaling assistant."))
	}

	// Show the tail of the conversation that fits.
	msgs := c.transcript
	limit := max(2, (c.height-10)/2)
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	for _, m := range msgs {
		rows = append(rows, renderChatMessage(m, bubbleWidth))
	}
	if c.pending {
		rows = append(rows, mutedStyle.Render("  thinking…"))
	}
	if c.lastErr != "" {
		rows = append(rows, errorStyle.Render("  "+c.lastErr))
	}

	rows = append(rows, "", c.input.View(), "")
	if c.focused {
		rows = append(rows, mutedStyle.Render("  enter: send  esc: stop typing"))
	} else {
		rows = append(rows, mutedStyle.Render("  enter: start typing"))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func renderChatMessage(m chat.Message, width int) string {
	body := lipgloss.NewStyle().Width(width).Render(m.Content)
	if m.Role == chat.RoleUser {
		return userBubbleStyle.Render("You") + "\n" + body
	}
	return assistantBubbleStyle.Render("SoulSync") + "\n" + body
}
