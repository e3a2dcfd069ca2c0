package bot

import (
	"fmt"
	"time"

	"campuskeeper/internal/reminder"
	"campuskeeper/internal/storage"

	"github.com/bwmarrin/discordgo"
)

// announcer posts event reminders to the configured announcement
// channel. It implements reminder.Poster.
type announcer struct {
	session   *discordgo.Session
	channelID string
	color     int
}

// ReminderPoster returns the poster the scheduler delivers through.
func (b *Bot) ReminderPoster() reminder.Poster {
	return &announcer{
		session:   b.session,
		channelID: b.cfg.Channels.Announce,
		color:     b.cfg.Embeds.Info,
	}
}

// Ready reports whether the announcement channel is configured and
// currently resolvable.
func (a *announcer) Ready() bool {
	if a.channelID == "" {
		return false
	}
	if a.session.State != nil {
		if channel, err := a.session.State.Channel(a.channelID); err == nil && channel != nil {
			return true
		}
	}
	channel, err := a.session.Channel(a.channelID)
	return err == nil && channel != nil
}

func (a *announcer) Post(event storage.Event, offset reminder.Offset, remaining time.Duration) error {
	embed := &discordgo.MessageEmbed{
		Title:       "⏰ Event Reminder: " + event.Name,
		Description: fmt.Sprintf("Starting in **%s** — <t:%d:F>", humanize(remaining), event.StartTime.Unix()),
		Color:       a.color,
	}
	if event.Location != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Location", Value: event.Location, Inline: true})
	}
	if event.Description != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Details", Value: event.Description})
	}
	if event.FlyerURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: event.FlyerURL}
	}
	_, err := a.session.ChannelMessageSendEmbed(a.channelID, embed)
	return err
}

// humanize renders a duration like "5 days", "1 day", "2 hours" or
// "45 minutes", rounding down to the largest whole unit.
func humanize(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d >= 48*time.Hour:
		return fmt.Sprintf("%d days", int(d.Hours())/24)
	case d >= 24*time.Hour:
		return "1 day"
	case d >= 2*time.Hour:
		return fmt.Sprintf("%d hours", int(d.Hours()))
	case d >= time.Hour:
		return "1 hour"
	case d >= 2*time.Minute:
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	default:
		return "1 minute"
	}
}
