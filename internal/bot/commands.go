package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campuskeeper/internal/setup"
	"campuskeeper/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// dispatch routes prefix commands. Setup commands require the Manage
// Server permission; the fun commands are open to everyone.
func (b *Bot) dispatch(session *discordgo.Session, msg *discordgo.MessageCreate) {
	content := strings.TrimSpace(msg.Content)
	if !strings.HasPrefix(content, b.cfg.CommandPrefix) {
		return
	}
	fields := strings.Fields(content[len(b.cfg.CommandPrefix):])
	if len(fields) == 0 {
		return
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]

	switch command {
	case "setuproles":
		b.requireManageGuild(session, msg, b.cmdSetupRoles)
	case "setupverify":
		b.requireManageGuild(session, msg, b.cmdSetupVerify)
	case "setuprules":
		b.requireManageGuild(session, msg, b.cmdSetupRules)
	case "events":
		b.requireManageGuild(session, msg, b.cmdEvents)
	case "event":
		b.requireManageGuild(session, msg, func(s *discordgo.Session, m *discordgo.MessageCreate) {
			b.cmdEventStatus(s, m, args)
		})
	case "joke":
		b.cmdJoke(session, msg)
	case "meme":
		b.cmdMeme(session, msg)
	case "quote":
		b.cmdQuote(session, msg)
	}
}

func (b *Bot) requireManageGuild(session *discordgo.Session, msg *discordgo.MessageCreate, handler func(*discordgo.Session, *discordgo.MessageCreate)) {
	if msg.GuildID == "" {
		return
	}
	perms, err := session.UserChannelPermissions(msg.Author.ID, msg.ChannelID)
	if err != nil {
		b.logger.Warn("permission lookup failed", zap.String("user_id", msg.Author.ID), zap.Error(err))
		return
	}
	if perms&(discordgo.PermissionManageServer|discordgo.PermissionAdministrator) == 0 {
		return
	}
	handler(session, msg)
}

func (b *Bot) cmdSetupRoles(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if b.markers.Exists(setup.FeatureRoles) {
		b.reply(session, msg.ChannelID, "Roles setup already exists.")
		return
	}
	channelID := b.cfg.Channels.Roles
	if channelID == "" {
		b.reply(session, msg.ChannelID, "Roles channel is not configured. Set ROLES_CHANNEL_ID.")
		return
	}

	majorMsg, err := session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    "Select your major from the menu below:",
		Components: []discordgo.MessageComponent{selectMenuRow(majorSelectID, "Select your major...", majorOptions())},
	})
	if err != nil {
		b.logger.Warn("major menu post failed", zap.Error(err))
		b.reply(session, msg.ChannelID, "Could not post the role menus. Check the roles channel and my permissions.")
		return
	}
	yearMsg, err := session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    "Select your year from the menu below:",
		Components: []discordgo.MessageComponent{selectMenuRow(yearSelectID, "Select your year...", yearOptions())},
	})
	if err != nil {
		b.logger.Warn("year menu post failed", zap.Error(err))
		b.reply(session, msg.ChannelID, "Could not post the role menus. Check the roles channel and my permissions.")
		return
	}

	marker := setup.Marker{MessageID: majorMsg.ID, ExtraMessageID: yearMsg.ID, ChannelID: channelID}
	if err := b.markers.Save(setup.FeatureRoles, marker); err != nil {
		b.logger.Error("roles marker save failed", zap.Error(err))
	}
	b.reply(session, msg.ChannelID, "Role selector created successfully 🎉")
}

func (b *Bot) cmdSetupVerify(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if b.markers.Exists(setup.FeatureVerify) {
		b.reply(session, msg.ChannelID, "Verification setup already exists.")
		return
	}
	channelID := b.cfg.Channels.Verify
	if channelID == "" {
		b.reply(session, msg.ChannelID, "Verify channel is not configured. Set VERIFY_CHANNEL_ID.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "Server Verification",
		Description: "Welcome! Click the **Verify** button below to get access to the server.\n\n" +
			"You'll receive a verification link to complete a CAPTCHA.",
		Color:  b.cfg.Embeds.Info,
		Footer: &discordgo.MessageEmbedFooter{Text: "If you experience any issues, message an officer."},
	}
	button := discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{Label: "Verify", Style: discordgo.PrimaryButton, CustomID: verifyButtonID},
	}}

	posted, err := session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{button},
	})
	if err != nil {
		b.logger.Warn("verify message post failed", zap.Error(err))
		b.reply(session, msg.ChannelID, "Could not post the verification message. Check the verify channel and my permissions.")
		return
	}

	if err := b.markers.Save(setup.FeatureVerify, setup.Marker{MessageID: posted.ID, ChannelID: channelID}); err != nil {
		b.logger.Error("verify marker save failed", zap.Error(err))
	}
	b.reply(session, msg.ChannelID, "Verification button created successfully 🎉")
}

func (b *Bot) cmdSetupRules(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if b.markers.Exists(setup.FeatureRules) {
		b.reply(session, msg.ChannelID, "Rules setup already exists.")
		return
	}
	channelID := b.cfg.Channels.Rules
	if channelID == "" {
		b.reply(session, msg.ChannelID, "Rules channel is not configured. Set RULES_CHANNEL_ID.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "📜 Server Rules",
		Description: "1. Be respectful. Harassment, hate speech, and slurs are not tolerated.\n" +
			"2. No spam, scams, or unsolicited advertising.\n" +
			"3. Keep discussions in the appropriate channels.\n" +
			"4. Follow the Discord Community Guidelines.\n" +
			"5. Verify your membership to unlock the rest of the server.",
		Color:  b.cfg.Embeds.Info,
		Footer: &discordgo.MessageEmbedFooter{Text: "Moderators may remove content at their discretion."},
	}
	posted, err := session.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		b.logger.Warn("rules post failed", zap.Error(err))
		b.reply(session, msg.ChannelID, "Could not post the rules. Check the rules channel and my permissions.")
		return
	}

	if err := b.markers.Save(setup.FeatureRules, setup.Marker{MessageID: posted.ID, ChannelID: channelID}); err != nil {
		b.logger.Error("rules marker save failed", zap.Error(err))
	}
	b.reply(session, msg.ChannelID, "Rules message created successfully 🎉")
}

func (b *Bot) cmdEvents(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if b.store == nil {
		b.reply(session, msg.ChannelID, "Event tracking is not available: database not configured.")
		return
	}

	now := time.Now().UTC()
	horizon := time.Duration(b.cfg.Reminders.HorizonDays) * 24 * time.Hour
	events, err := b.store.UpcomingEvents(context.Background(), now, now.Add(horizon))
	if err != nil {
		b.logger.Warn("upcoming events fetch failed", zap.Error(err))
		b.reply(session, msg.ChannelID, "Could not load upcoming events. Please try again later.")
		return
	}
	if len(events) == 0 {
		b.reply(session, msg.ChannelID, fmt.Sprintf("No events scheduled in the next %d days.", b.cfg.Reminders.HorizonDays))
		return
	}

	var lines []string
	for _, event := range events {
		line := fmt.Sprintf("**%s** — <t:%d:F> (`%s`)", event.Name, event.StartTime.Unix(), event.ID)
		if event.Location != "" {
			line += " @ " + event.Location
		}
		lines = append(lines, line)
	}
	embed := &discordgo.MessageEmbed{
		Title:       "📅 Upcoming Events",
		Description: strings.Join(lines, "\n"),
		Color:       b.cfg.Embeds.Info,
	}
	b.replyEmbed(session, msg.ChannelID, embed)
}

func (b *Bot) cmdEventStatus(session *discordgo.Session, msg *discordgo.MessageCreate, args []string) {
	if b.store == nil {
		b.reply(session, msg.ChannelID, "Event tracking is not available: database not configured.")
		return
	}
	if len(args) == 0 {
		b.reply(session, msg.ChannelID, "Usage: "+b.cfg.CommandPrefix+"event <id>")
		return
	}
	eventID := args[0]

	event, err := b.store.EventByID(context.Background(), eventID)
	if err != nil {
		if storage.IsNotFound(err) {
			b.reply(session, msg.ChannelID, "No event with id `"+eventID+"`.")
			return
		}
		b.logger.Warn("event fetch failed", zap.String("event_id", eventID), zap.Error(err))
		b.reply(session, msg.ChannelID, "Could not load that event. Please try again later.")
		return
	}

	sentCodes, err := b.store.ListReminders(context.Background(), eventID)
	if err != nil {
		b.logger.Warn("reminder list failed", zap.String("event_id", eventID), zap.Error(err))
		b.reply(session, msg.ChannelID, "Could not load reminder status. Please try again later.")
		return
	}
	sent := make(map[string]struct{}, len(sentCodes))
	for _, code := range sentCodes {
		sent[code] = struct{}{}
	}

	var lines []string
	for _, code := range b.cfg.Reminders.Offsets {
		status := "pending"
		if _, ok := sent[code]; ok {
			status = "sent"
		}
		lines = append(lines, fmt.Sprintf("`%s` — %s", code, status))
	}
	embed := &discordgo.MessageEmbed{
		Title:       "⏰ Reminder Status: " + event.Name,
		Description: fmt.Sprintf("Starts <t:%d:F> (<t:%d:R>)\n\n%s", event.StartTime.Unix(), event.StartTime.Unix(), strings.Join(lines, "\n")),
		Color:       b.cfg.Embeds.Info,
	}
	b.replyEmbed(session, msg.ChannelID, embed)
}

func (b *Bot) cmdJoke(session *discordgo.Session, msg *discordgo.MessageCreate) {
	joke, err := b.fun.Joke(context.Background())
	if err != nil {
		b.logger.Warn("joke fetch failed", zap.Error(err))
		b.reply(session, msg.ChannelID, "Couldn't fetch a joke right now. Try again later.")
		return
	}
	b.reply(session, msg.ChannelID, joke.Setup+"\n||"+joke.Punchline+"||")
}

func (b *Bot) cmdMeme(session *discordgo.Session, msg *discordgo.MessageCreate) {
	meme, err := b.fun.Meme(context.Background())
	if err != nil {
		b.logger.Warn("meme fetch failed", zap.Error(err))
		b.reply(session, msg.ChannelID, "Couldn't fetch a meme right now. Try again later.")
		return
	}
	embed := &discordgo.MessageEmbed{
		Title: meme.Title,
		Image: &discordgo.MessageEmbedImage{URL: meme.URL},
		Color: b.cfg.Embeds.Info,
	}
	b.replyEmbed(session, msg.ChannelID, embed)
}

func (b *Bot) cmdQuote(session *discordgo.Session, msg *discordgo.MessageCreate) {
	quote, err := b.fun.Quote(context.Background())
	if err != nil {
		b.logger.Warn("quote fetch failed", zap.Error(err))
		b.reply(session, msg.ChannelID, "Couldn't fetch a quote right now. Try again later.")
		return
	}
	b.reply(session, msg.ChannelID, "> "+quote.Text+"\n— *"+quote.Author+"*")
}

func (b *Bot) reply(session *discordgo.Session, channelID, content string) {
	if _, err := session.ChannelMessageSend(channelID, content); err != nil {
		b.logger.Warn("reply failed", zap.String("channel_id", channelID), zap.Error(err))
	}
}

func (b *Bot) replyEmbed(session *discordgo.Session, channelID string, embed *discordgo.MessageEmbed) {
	if _, err := session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		b.logger.Warn("reply failed", zap.String("channel_id", channelID), zap.Error(err))
	}
}

func selectMenuRow(customID, placeholder string, options []discordgo.SelectMenuOption) discordgo.MessageComponent {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.SelectMenu{
			CustomID:    customID,
			Placeholder: placeholder,
			Options:     options,
		},
	}}
}

func majorOptions() []discordgo.SelectMenuOption {
	return labelOptions("Biology", "Biomedical Engineering", "Chemistry", "Computer Engineering", "Computer Science", "Electrical Engineering", "Mechanical Engineering")
}

func yearOptions() []discordgo.SelectMenuOption {
	return labelOptions("Freshman", "Sophomore", "Junior", "Senior", "Grad", "Alumni")
}

func labelOptions(labels ...string) []discordgo.SelectMenuOption {
	options := make([]discordgo.SelectMenuOption, 0, len(labels))
	for _, label := range labels {
		options = append(options, discordgo.SelectMenuOption{Label: label, Value: label})
	}
	return options
}
