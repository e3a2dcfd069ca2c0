package bot

import (
	"time"

	"campuskeeper/internal/moderation"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const warningLifetime = 10 * time.Second

// onMessageCreate runs the moderation pipeline, then forwards surviving
// messages to command dispatch exactly once. Spam is checked before
// profanity and is authoritative; bot accounts are spam-checked but
// never profanity-checked.
func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil {
		return
	}
	if session.State != nil && session.State.User != nil && msg.Author.ID == session.State.User.ID {
		b.dispatch(session, msg)
		return
	}

	if b.moderate(session, msg) {
		return
	}
	b.dispatch(session, msg)
}

// moderate returns true when processing must stop (the spam-terminal
// branch). Panics and unexpected failures are contained here so a
// moderation bug never blocks command dispatch.
func (b *Bot) moderate(session *discordgo.Session, msg *discordgo.MessageCreate) (terminal bool) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("moderation recovered", zap.Any("panic", r), zap.String("message_id", msg.ID))
			terminal = false
		}
	}()

	if b.classifier.IsSpam(msg.Content) {
		b.removeSpam(session, msg)
		return true
	}

	if msg.Author.Bot {
		return false
	}

	if b.classifier.Classify(msg.Content) == moderation.VerdictBannedWord {
		b.removeProfanity(session, msg)
	}
	return false
}

func (b *Bot) removeSpam(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if !b.deleteMessage(session, msg, "spam") {
		return
	}
	b.logger.Info("spam message deleted",
		zap.String("user_id", msg.Author.ID),
		zap.Bool("bot", msg.Author.Bot),
		zap.String("channel_id", msg.ChannelID))

	if msg.Author.Bot {
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "⚠️ Spam Message Removed",
		Description: "<@" + msg.Author.ID + ">, please refrain from posting spam messages in this server.",
		Color:       b.cfg.Embeds.Warning,
		Footer:      &discordgo.MessageEmbedFooter{Text: "This message was automatically removed by the spam filter."},
	}
	warning, err := session.ChannelMessageSendEmbed(msg.ChannelID, embed)
	if err != nil {
		b.logger.Warn("spam warning send failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
		return
	}
	b.expireWarning(session, msg.ChannelID, warning.ID)
}

func (b *Bot) removeProfanity(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if !b.deleteMessage(session, msg, "banned_word") {
		return
	}
	b.logger.Info("message deleted for language",
		zap.String("user_id", msg.Author.ID),
		zap.String("channel_id", msg.ChannelID))

	embed := &discordgo.MessageEmbed{
		Title:       "⚠️ Message Removed",
		Description: "<@" + msg.Author.ID + ">, please refrain from using inappropriate language in this server.",
		Color:       b.cfg.Embeds.Error,
		Footer:      &discordgo.MessageEmbedFooter{Text: "This message was automatically removed by the moderation system."},
	}

	warning, err := session.ChannelMessageSendEmbed(msg.ChannelID, embed)
	if err == nil {
		b.expireWarning(session, msg.ChannelID, warning.ID)
		return
	}
	if !isPermissionError(err) {
		b.logger.Warn("warning send failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
		return
	}

	// no send permission in the channel: fall back to a DM
	dm, dmErr := session.UserChannelCreate(msg.Author.ID)
	if dmErr == nil {
		_, dmErr = session.ChannelMessageSendEmbed(dm.ID, embed)
	}
	if dmErr != nil {
		b.logger.Warn("could not deliver moderation warning",
			zap.String("user_id", msg.Author.ID),
			zap.Error(dmErr))
	}
}

// deleteMessage returns false only when the message could not be
// removed (already gone counts as removed).
func (b *Bot) deleteMessage(session *discordgo.Session, msg *discordgo.MessageCreate, reason string) bool {
	err := session.ChannelMessageDelete(msg.ChannelID, msg.ID)
	if err == nil {
		return true
	}
	if isNotFoundError(err) {
		return true
	}
	if isPermissionError(err) {
		b.logger.Warn("missing permissions to delete message",
			zap.String("reason", reason),
			zap.String("channel_id", msg.ChannelID))
		return false
	}
	b.logger.Warn("message delete failed",
		zap.String("reason", reason),
		zap.String("message_id", msg.ID),
		zap.Error(err))
	return false
}

// expireWarning schedules a best-effort delete of the warning message.
// The timer is fire-and-forget; a warning already cleaned up by someone
// else is a harmless no-op.
func (b *Bot) expireWarning(session *discordgo.Session, channelID, messageID string) {
	time.AfterFunc(warningLifetime, func() {
		err := session.ChannelMessageDelete(channelID, messageID)
		if err == nil || isNotFoundError(err) {
			return
		}
		if isPermissionError(err) {
			b.logger.Warn("missing permissions to expire warning", zap.String("channel_id", channelID))
			return
		}
		b.logger.Warn("warning expiry failed", zap.String("message_id", messageID), zap.Error(err))
	})
}
