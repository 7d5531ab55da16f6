package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meetly-app/meetly/internal/chat"
	"github.com/meetly-app/meetly/internal/conversation"
	"github.com/meetly-app/meetly/internal/notify"
	"github.com/meetly-app/meetly/internal/ui"
	"github.com/meetly-app/meetly/pkg/models"
)

// ErrChatLocked is returned when a conversation has not been accepted.
var ErrChatLocked = errors.New("chat is locked until the request is accepted")

func describeView(v conversation.View) string {
	switch v.Status {
	case models.ConversationPending:
		if v.IsRequester {
			return "Request sent, waiting for a reply"
		}
		return "Wants to chat with you"
	case models.ConversationAccepted:
		return "Chat unlocked"
	case models.ConversationRejected:
		return "Request declined; you may ask again"
	}
	return "No conversation yet"
}

func printView(cmd *cobra.Command, otherID string, v conversation.View) {
	d := GetDeps()
	lines := []string{
		d.Renderer.KV("User", otherID),
		d.Renderer.KV("Status", ui.Title(string(v.Status))),
		d.Renderer.KV("State", describeView(v)),
	}
	if v.Conversation != nil {
		lines = append(lines, d.Renderer.KV("Chat", v.Conversation.ID))
	}
	if allowed := v.Allowed(); len(allowed) > 0 {
		names := make([]string, len(allowed))
		for i, a := range allowed {
			names[i] = string(a)
		}
		lines = append(lines, d.Renderer.KV("Actions", strings.Join(names, ", ")))
	}
	printLine(cmd, d.Renderer.Card("Conversation", strings.Join(lines, "\n")))
}

type transition func(ctx context.Context, otherUserID string) (conversation.View, error)

func newTransitionCmd(use, short, title, done string, pick func(*conversation.Handshake) transition) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := GetDeps()
			if _, err := signedIn(cmd); err != nil {
				return err
			}
			v, err := call(cmd, title, func(ctx context.Context) (conversation.View, error) {
				return pick(d.Handshake)(ctx, args[0])
			})
			if err != nil {
				return fail(cmd, "Could not "+use+" request", err)
			}
			dialog(cmd).Success(done)
			printView(cmd, args[0], v)
			return nil
		},
	}
}

func newConversationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   "Chat requests between members",
		Long: `Members chat only after a request is accepted:

  none ──request──▶ pending ──accept──▶ accepted
                     │  │
              cancel │  └─reject──▶ rejected ──request──▶ pending
                     ▼
                   none`,
	}

	var message string
	request := &cobra.Command{
		Use:   "request <user-id>",
		Short: "Ask a member to chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := GetDeps()
			me, err := signedIn(cmd)
			if err != nil {
				return err
			}
			if args[0] == me {
				return fail(cmd, "Could not send request", errors.New("you cannot message yourself"))
			}
			v, err := call(cmd, "Sending request", func(ctx context.Context) (conversation.View, error) {
				return d.Handshake.Request(ctx, args[0], message)
			})
			if err != nil {
				return fail(cmd, "Could not send request", err)
			}
			dialog(cmd).Success("Chat request sent")
			printView(cmd, args[0], v)
			return nil
		},
	}
	request.Flags().StringVarP(&message, "message", "m", "", "optional opening message")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status <user-id>",
			Short: "Show the request state with a member",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				d := GetDeps()
				if _, err := signedIn(cmd); err != nil {
					return err
				}
				v, err := call(cmd, "Checking", func(ctx context.Context) (conversation.View, error) {
					return d.Handshake.Status(ctx, args[0])
				})
				if err != nil {
					return fail(cmd, "Could not check conversation", err)
				}
				printView(cmd, args[0], v)
				return nil
			},
		},
		request,
		newTransitionCmd("cancel", "Withdraw your pending request", "Cancelling", "Request cancelled",
			func(h *conversation.Handshake) transition { return h.Cancel }),
		newTransitionCmd("accept", "Accept a member's request", "Accepting", "Request accepted. Chat unlocked",
			func(h *conversation.Handshake) transition { return h.Accept }),
		newTransitionCmd("reject", "Decline a member's request", "Declining", "Request declined",
			func(h *conversation.Handshake) transition { return h.Reject }),
		&cobra.Command{
			Use:         "list",
			Short:       "List your conversations",
			Args:        cobra.NoArgs,
			Annotations: route("/messages"),
			RunE: func(cmd *cobra.Command, _ []string) error {
				d := GetDeps()
				me, err := signedIn(cmd)
				if err != nil {
					return err
				}
				convs, err := call(cmd, "Loading conversations", d.API.Conversations.List)
				if err != nil {
					return fail(cmd, "Could not load conversations", err)
				}
				printLine(cmd, d.Renderer.Conversations(convs, me))
				return nil
			},
		},
	)
	return cmd
}

func newMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"msg"},
		Short:   "Read and send messages in accepted conversations",
	}

	var text string
	send := &cobra.Command{
		Use:         "send <conversation-id> [message...]",
		Short:       "Send a message",
		Args:        cobra.MinimumNArgs(1),
		Annotations: route("/messages/{id}"),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := GetDeps()
			if _, err := signedIn(cmd); err != nil {
				return err
			}
			if len(args) > 1 {
				text = strings.Join(args[1:], " ")
			}
			d.Headless.SetAnswers(map[string]string{"text": text})
			content, err := d.Forms.Text("text", "Message")
			if err != nil {
				return fail(cmd, "Message not sent", err)
			}
			if _, err := call(cmd, "Sending", func(ctx context.Context) (*models.Message, error) {
				return d.API.Messages.Send(ctx, models.SendMessageRequest{ConversationID: args[0], Content: content})
			}); err != nil {
				return fail(cmd, "Message not sent", err)
			}
			d.Bus.Publish(notify.UnreadCountChanged)
			dialog(cmd).Success("Message sent")
			return nil
		},
	}
	send.Flags().StringVar(&text, "text", "", "message text")

	cmd.AddCommand(
		send,
		&cobra.Command{
			Use:         "list <conversation-id>",
			Short:       "Show a conversation's messages",
			Args:        cobra.ExactArgs(1),
			Annotations: route("/messages/{id}"),
			RunE: func(cmd *cobra.Command, args []string) error {
				d := GetDeps()
				me, err := signedIn(cmd)
				if err != nil {
					return err
				}
				msgs, err := call(cmd, "Loading messages", func(ctx context.Context) ([]models.Message, error) {
					return d.API.Messages.List(ctx, args[0])
				})
				if err != nil {
					return fail(cmd, "Could not load messages", err)
				}
				printLine(cmd, d.Renderer.Messages(msgs, me))
				return nil
			},
		},
		&cobra.Command{
			Use:   "read <conversation-id>",
			Short: "Mark a conversation as read",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				d := GetDeps()
				if _, err := signedIn(cmd); err != nil {
					return err
				}
				if err := run(cmd, "Marking read", func(ctx context.Context) error {
					return d.API.Messages.MarkRead(ctx, args[0])
				}); err != nil {
					return fail(cmd, "Could not mark read", err)
				}
				d.Bus.Publish(notify.UnreadCountChanged)
				dialog(cmd).Success("Marked as read")
				return nil
			},
		},
		&cobra.Command{
			Use:   "unread",
			Short: "Show unread message and pending request counts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				d := GetDeps()
				if _, err := signedIn(cmd); err != nil {
					return err
				}
				c, err := pollOnce(cmd)
				if err != nil {
					return fail(cmd, "Could not load counts", err)
				}
				printLine(cmd, d.Renderer.Counts(c.Unread, c.Pending, c.At))
				return nil
			},
		},
	)
	return cmd
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "chat <conversation-id>",
		Short:       "Open an interactive chat",
		Args:        cobra.ExactArgs(1),
		Annotations: route("/messages/{id}"),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := GetDeps()
			me, err := signedIn(cmd)
			if err != nil {
				return err
			}
			convs, err := call(cmd, "Loading conversation", d.API.Conversations.List)
			if err != nil {
				return fail(cmd, "Could not open chat", err)
			}
			var conv *models.Conversation
			for i := range convs {
				if convs[i].ID == args[0] {
					conv = &convs[i]
				}
			}
			switch {
			case conv == nil:
				return fail(cmd, "Could not open chat", fmt.Errorf("conversation %s not found", args[0]))
			case conv.Status != models.ConversationAccepted:
				return fail(cmd, "Could not open chat", ErrChatLocked)
			case d.Headless.IsHeadless():
				return fail(cmd, "Could not open chat", errors.New("chat needs a terminal; use 'meetly messages list' and 'meetly messages send'"))
			}

			_, err = chat.Run(cmd.Context(), chat.Options{
				Service:        d.API.Messages,
				Bus:            d.Bus,
				Renderer:       d.Renderer,
				ConversationID: conv.ID,
				Me:             me,
				Title:          "Chat with " + conv.Other(me).DisplayName(),
				Timeout:        d.Config.Get().API.Timeout,
			})
			return err
		},
	}
}
