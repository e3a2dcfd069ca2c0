package bot

import (
	"context"
	"errors"
	"time"

	"campuskeeper/internal/config"
	"campuskeeper/internal/fun"
	"campuskeeper/internal/moderation"
	"campuskeeper/internal/roles"
	"campuskeeper/internal/setup"
	"campuskeeper/internal/storage"
	"campuskeeper/internal/verification"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	majorSelectID  = "major_select_menu"
	yearSelectID   = "year_select_menu"
	verifyButtonID = "verify_button"
)

const maxOpenAttempts = 5

type Bot struct {
	cfg        config.Config
	logger     *zap.Logger
	store      *storage.Store
	session    *discordgo.Session
	classifier *moderation.Classifier
	roles      *roles.Service
	issuer     *verification.Issuer
	fun        *fun.Client
	markers    *setup.Markers
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, classifier *moderation.Classifier, issuer *verification.Issuer, funClient *fun.Client) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	return &Bot{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		session:    session,
		classifier: classifier,
		roles:      roles.NewService(session),
		issuer:     issuer,
		fun:        funClient,
		markers:    setup.NewMarkers(cfg.DataDir),
	}, nil
}

// Start registers the handlers and opens the gateway connection.
// Transient open failures are retried with exponential backoff; a bad
// credential fails immediately.
func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onInteractionCreate)

	backoff := 2 * time.Second
	for attempt := 1; ; attempt++ {
		err := b.session.Open()
		if err == nil {
			return nil
		}
		if errors.Is(err, discordgo.ErrUnauthorized) {
			return err
		}
		if attempt >= maxOpenAttempts {
			return err
		}
		b.logger.Warn("gateway open failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		time.Sleep(backoff)
		backoff *= 2
	}
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready",
		zap.String("user", session.State.User.Username),
		zap.String("id", session.State.User.ID))

	for _, feature := range []string{setup.FeatureRoles, setup.FeatureVerify, setup.FeatureRules} {
		if !b.markers.Exists(feature) {
			b.logger.Warn("feature not set up",
				zap.String("feature", feature),
				zap.String("hint", b.cfg.CommandPrefix+"setup"+feature))
		}
	}
	if b.store == nil {
		b.logger.Warn("database not configured, verification and reminders disabled")
	}
}

// New members start out unverified until they complete the web flow.
func (b *Bot) onGuildMemberAdd(session *discordgo.Session, event *discordgo.GuildMemberAdd) {
	if event.Member == nil || event.Member.User == nil {
		return
	}
	role := b.findRoleByName(event.GuildID, b.cfg.Roles.Unverified)
	if role == nil {
		b.logger.Warn("unverified role missing", zap.String("guild_id", event.GuildID))
		return
	}
	if err := session.GuildMemberRoleAdd(event.GuildID, event.Member.User.ID, role.ID); err != nil {
		if isPermissionError(err) {
			b.logger.Warn("missing permissions to add unverified role", zap.String("user_id", event.Member.User.ID))
			return
		}
		b.logger.Warn("unverified role add failed", zap.String("user_id", event.Member.User.ID), zap.Error(err))
	}
}

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionMessageComponent {
		return
	}

	switch interaction.MessageComponentData().CustomID {
	case majorSelectID:
		b.handleRoleSelect(session, interaction, roles.MajorLabels)
	case yearSelectID:
		b.handleRoleSelect(session, interaction, roles.YearLabels)
	case verifyButtonID:
		b.handleVerifyButton(session, interaction)
	}
}

func (b *Bot) handleRoleSelect(session *discordgo.Session, interaction *discordgo.InteractionCreate, category []string) {
	if interaction.GuildID == "" || interaction.Member == nil || interaction.Member.User == nil {
		b.respond(session, interaction, "Use this menu in the server.", true)
		return
	}
	values := interaction.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	chosen := values[0]

	guildRoles := b.guildRoles(interaction.GuildID)
	applied, err := b.roles.Assign(interaction.GuildID, interaction.Member.User.ID, guildRoles, interaction.Member.Roles, chosen, category)
	if err != nil {
		if errors.Is(err, roles.ErrRoleNotFound) {
			b.respond(session, interaction, "That role does not exist - please tell an officer.", true)
			return
		}
		b.logger.Warn("role assignment failed",
			zap.String("user_id", interaction.Member.User.ID),
			zap.String("chosen", chosen),
			zap.Error(err))
		b.respond(session, interaction, "Could not update your roles. Please try again later.", true)
		return
	}

	b.respond(session, interaction, "You have been assigned the **"+applied+"** role.", true)
}

func (b *Bot) handleVerifyButton(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.GuildID == "" || interaction.Member == nil || interaction.Member.User == nil {
		b.respond(session, interaction, "Use this button in the server.", true)
		return
	}
	user := interaction.Member.User

	if verified := b.findRoleByName(interaction.GuildID, b.cfg.Roles.Verified); verified != nil {
		for _, roleID := range interaction.Member.Roles {
			if roleID == verified.ID {
				b.respond(session, interaction, "You are already verified.", true)
				return
			}
		}
	}

	if !b.issuer.Enabled() {
		b.respond(session, interaction, "Verification is not available right now.", true)
		return
	}

	url, err := b.issuer.Issue(context.Background(), user.ID, interaction.GuildID)
	if err != nil {
		b.logger.Error("token issue failed", zap.String("user_id", user.ID), zap.Error(err))
		b.respond(session, interaction, "Could not start verification right now. Please try again later.", true)
		return
	}

	b.respond(session, interaction, "Click this link to complete CAPTCHA verification:\n"+url, true)
}

func (b *Bot) guildRoles(guildID string) []*discordgo.Role {
	if guild, err := b.session.State.Guild(guildID); err == nil && guild != nil {
		return guild.Roles
	}
	guildRoles, err := b.session.GuildRoles(guildID)
	if err != nil {
		b.logger.Warn("guild roles fetch failed", zap.String("guild_id", guildID), zap.Error(err))
		return nil
	}
	return guildRoles
}

func (b *Bot) findRoleByName(guildID, name string) *discordgo.Role {
	for _, role := range b.guildRoles(guildID) {
		if role != nil && role.Name == name {
			return role
		}
	}
	return nil
}

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
	if err != nil {
		b.logger.Warn("interaction respond failed", zap.Error(err))
	}
}
