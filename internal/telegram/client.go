package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ad/go-telegram-gorbushka/internal/models"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// ErrMessageNotFound is returned by EditMessage when the target message is gone.
var ErrMessageNotFound = errors.New("message to edit not found")

// Client exposes the subset of the Bot API the flows use.
type Client struct {
	bot *bot.Bot
}

func NewClient(b *bot.Bot) *Client {
	return &Client{bot: b}
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, view View) (int, error) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   view.Text,
	}
	if view.HTML {
		params.ParseMode = tgmodels.ParseModeHTML
	}
	if markup := view.Keyboard.markup(); markup != nil {
		params.ReplyMarkup = markup
	}
	msg, err := c.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return msg.ID, nil
}

// EditMessage edits text and keyboard in place. An unchanged message is not an error.
func (c *Client) EditMessage(ctx context.Context, chatID int64, messageID int, view View) error {
	params := &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      view.Text,
	}
	if view.HTML {
		params.ParseMode = tgmodels.ParseModeHTML
	}
	if markup := view.Keyboard.markup(); markup != nil {
		params.ReplyMarkup = markup
	}
	_, err := c.bot.EditMessageText(ctx, params)
	switch {
	case err == nil, isNotModifiedError(err):
		return nil
	case isMessageNotFoundError(err):
		return fmt.Errorf("edit message %d in %d: %w", messageID, chatID, ErrMessageNotFound)
	}
	return fmt.Errorf("edit message %d in %d: %w", messageID, chatID, err)
}

func (c *Client) DeleteMessages(ctx context.Context, chatID int64, messageIDs []int) error {
	if len(messageIDs) == 0 {
		return nil
	}
	_, err := c.bot.DeleteMessages(ctx, &bot.DeleteMessagesParams{
		ChatID:     chatID,
		MessageIDs: messageIDs,
	})
	if err != nil {
		return fmt.Errorf("delete %d messages in %d: %w", len(messageIDs), chatID, err)
	}
	return nil
}

func (c *Client) BanChatMember(ctx context.Context, chatID, userID int64) error {
	if _, err := c.bot.BanChatMember(ctx, &bot.BanChatMemberParams{ChatID: chatID, UserID: userID}); err != nil {
		return fmt.Errorf("ban %d in %d: %w", userID, chatID, err)
	}
	return nil
}

func (c *Client) UnbanChatMember(ctx context.Context, chatID, userID int64) error {
	_, err := c.bot.UnbanChatMember(ctx, &bot.UnbanChatMemberParams{
		ChatID:       chatID,
		UserID:       userID,
		OnlyIfBanned: true,
	})
	if err != nil {
		return fmt.Errorf("unban %d in %d: %w", userID, chatID, err)
	}
	return nil
}

func (c *Client) CreateInviteLink(ctx context.Context, chatID int64, memberLimit int) (string, error) {
	link, err := c.bot.CreateChatInviteLink(ctx, &bot.CreateChatInviteLinkParams{
		ChatID:      chatID,
		MemberLimit: memberLimit,
	})
	if err != nil {
		return "", fmt.Errorf("create invite link for %d: %w", chatID, err)
	}
	return link.InviteLink, nil
}

// GetChatMember looks up the public profile of userID as seen in chatID.
func (c *Client) GetChatMember(ctx context.Context, chatID, userID int64) (models.Profile, error) {
	member, err := c.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil {
		return models.Profile{UserID: userID}, fmt.Errorf("get chat member %d in %d: %w", userID, chatID, err)
	}

	user := memberUser(member)

	profile := models.Profile{UserID: userID}
	if user != nil {
		profile.Username = user.Username
		profile.FirstName = user.FirstName
		profile.LastName = user.LastName
	}
	return profile, nil
}

// memberUser returns the user carried by any chat member status, including
// users who left or were banned.
func memberUser(member *tgmodels.ChatMember) *tgmodels.User {
	switch member.Type {
	case tgmodels.ChatMemberTypeOwner:
		if member.Owner != nil {
			return member.Owner.User
		}
	case tgmodels.ChatMemberTypeAdministrator:
		if member.Administrator != nil {
			return &member.Administrator.User
		}
	case tgmodels.ChatMemberTypeMember:
		if member.Member != nil {
			return member.Member.User
		}
	case tgmodels.ChatMemberTypeRestricted:
		if member.Restricted != nil {
			return member.Restricted.User
		}
	case tgmodels.ChatMemberTypeLeft:
		if member.Left != nil {
			return member.Left.User
		}
	case tgmodels.ChatMemberTypeBanned:
		if member.Banned != nil {
			return member.Banned.User
		}
	}
	return nil
}

func (c *Client) PinChatMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := c.bot.PinChatMessage(ctx, &bot.PinChatMessageParams{
		ChatID:              chatID,
		MessageID:           messageID,
		DisableNotification: true,
	})
	if err != nil {
		return fmt.Errorf("pin message %d in %d: %w", messageID, chatID, err)
	}
	return nil
}

type Command struct {
	Name        string
	Description string
}

// SetMyCommands replaces the command menu shown in one chat.
func (c *Client) SetMyCommands(ctx context.Context, chatID int64, commands []Command) error {
	botCommands := make([]tgmodels.BotCommand, 0, len(commands))
	for _, cmd := range commands {
		botCommands = append(botCommands, tgmodels.BotCommand{Command: cmd.Name, Description: cmd.Description})
	}
	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: botCommands,
		Scope:    &tgmodels.BotCommandScopeChat{ChatID: chatID},
	})
	if err != nil {
		return fmt.Errorf("set commands for %d: %w", chatID, err)
	}
	return nil
}

func (c *Client) DeleteMyCommands(ctx context.Context, chatID int64) error {
	_, err := c.bot.DeleteMyCommands(ctx, &bot.DeleteMyCommandsParams{
		Scope: &tgmodels.BotCommandScopeChat{ChatID: chatID},
	})
	if err != nil {
		return fmt.Errorf("delete commands for %d: %w", chatID, err)
	}
	return nil
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	_, err := c.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: callbackID})
	return err
}

func isMessageNotFoundError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "message to edit not found") ||
		strings.Contains(errStr, "MESSAGE_ID_INVALID") ||
		strings.Contains(errStr, "message can't be edited")
}

func isNotModifiedError(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
