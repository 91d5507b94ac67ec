package bot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/jusunglee/singlish/internal/db"
	"github.com/jusunglee/singlish/internal/metrics"
	"github.com/jusunglee/singlish/internal/transliteration"
)

const (
	maxCommandRunes  = 1000
	maxFeedbackRunes = 500

	suggestFixPrefix = "suggest_fix:"
	feedbackModalID  = "feedback_modal:"
	suggestedInputID = "suggested_text"
	commentInputID   = "comment_text"
)

type Config struct {
	GuildID string
	// ReloadInterval is how often custom words are re-read from the
	// database. Zero disables reloading.
	ReloadInterval time.Duration
	// FeedbackRetention is how long feedback is kept. Zero keeps it forever.
	FeedbackRetention time.Duration
	RateLimitMax      int
	RateLimitWindow   time.Duration
}

type Bot struct {
	log        Logger
	session    DiscordSession
	feedback   FeedbackStore
	translator Translator
	limiter    *RateLimiter
	config     Config
}

func New(
	log Logger,
	session DiscordSession,
	feedback FeedbackStore,
	translator Translator,
	config Config,
) *Bot {
	return &Bot{
		log:        log,
		session:    session,
		feedback:   feedback,
		translator: translator,
		limiter:    NewRateLimiter(config.RateLimitMax, config.RateLimitWindow),
		config:     config,
	}
}

func (b *Bot) Run(ctx context.Context) error {
	b.session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		b.handleInteraction(i)
	})
	b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.log.InfoContext(ctx, "connected to Discord", "username", r.User.Username)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening Discord connection: %w", err)
	}

	if err := b.registerCommands(ctx); err != nil {
		b.session.Close()
		return fmt.Errorf("registering commands: %w", err)
	}

	var wg sync.WaitGroup
	if b.config.ReloadInterval > 0 {
		wg.Add(1)
		go b.runReloader(ctx, &wg)
	}
	if b.config.FeedbackRetention > 0 {
		wg.Add(1)
		go b.runCleaner(ctx, &wg)
	}

	b.log.InfoContext(ctx, "bot is running, press Ctrl+C to stop")

	<-ctx.Done()
	b.log.Info("shutdown signal received")
	wg.Wait()
	b.session.Close()
	b.log.Info("shut down complete")

	return nil
}

func (b *Bot) registerCommands(ctx context.Context) error {
	guildID := b.config.GuildID
	if guildID != "" {
		b.log.InfoContext(ctx, "registering commands to guild", "guild_id", guildID)
	} else {
		b.log.InfoContext(ctx, "registering commands globally (may take up to 1 hour to propagate)")
	}

	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.GetUserID(), guildID, commands)
	if err != nil {
		return fmt.Errorf("bulk overwrite commands: %w", err)
	}
	b.log.InfoContext(ctx, "registered commands", "count", len(commands))
	return nil
}

// runReloader keeps custom words added through the web API in sync.
func (b *Bot) runReloader(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		sleepWithContext(ctx, b.config.ReloadInterval)
		if ctx.Err() != nil {
			return
		}
		reloadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if err := b.translator.Reload(reloadCtx); err != nil {
			b.log.ErrorContext(ctx, "reloading custom words", "error", err)
		}
		cancel()
	}
}

func (b *Bot) runCleaner(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for ctx.Err() == nil {
		cleanupCtx, cancel := context.WithTimeout(ctx, time.Minute)
		if err := b.cleanupOldFeedback(cleanupCtx); err != nil {
			b.log.Error("deleting old feedback", "error", err)
		}
		cancel()
		sleepWithContext(ctx, time.Hour)
	}
}

func (b *Bot) cleanupOldFeedback(ctx context.Context) error {
	rows, err := b.feedback.DeleteOldFeedback(ctx, time.Now().Add(-b.config.FeedbackRetention))
	if err != nil {
		return fmt.Errorf("deleting old feedback: %w", err)
	}
	b.log.With("subsystem", "cleanup").InfoContext(ctx, "deleted old feedback", "rows", rows)
	return nil
}

func sleepWithContext(ctx context.Context, dur time.Duration) {
	timer := time.NewTimer(dur)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func scriptCommand(script transliteration.Script, description string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        script.String(),
		Description: description,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "text",
				Description: "Romanized text, e.g. mama gedhara yanavaa",
				Required:    true,
				MaxLength:   maxCommandRunes,
			},
		},
	}
}

var commands = []*discordgo.ApplicationCommand{
	scriptCommand(transliteration.Sinhala, "Convert Singlish to Sinhala script"),
	scriptCommand(transliteration.Tamil, "Convert romanized Tamil to Tamil script"),
}

type handlerResult struct {
	Response *discordgo.InteractionResponse
	Err      error
}

type userError struct {
	Err error
}

func (e *userError) Error() string {
	return e.Err.Error()
}

func (e *userError) Unwrap() error {
	return e.Err
}

func newUserError(err error) *userError {
	return &userError{Err: err}
}

func (b *Bot) handleInteraction(i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var (
		result handlerResult
		name   string
	)
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name = i.ApplicationCommandData().Name
		result = b.handleCommand(i)
	case discordgo.InteractionMessageComponent:
		name = i.MessageComponentData().CustomID
		result = b.handleComponent(i)
	case discordgo.InteractionModalSubmit:
		name = i.ModalSubmitData().CustomID
		result = b.handleModalSubmit(ctx, i)
	default:
		return
	}

	if result.Response != nil {
		if err := b.session.InteractionRespond(i.Interaction, result.Response); err != nil {
			b.log.ErrorContext(ctx, "failed to respond to interaction", "error", err)
		}
	}

	if result.Err == nil {
		return
	}
	var ue *userError
	if errors.As(result.Err, &ue) {
		b.log.WarnContext(ctx, "user error", "interaction", name, "error", result.Err, "user_id", interactionUserID(i))
	} else {
		b.log.ErrorContext(ctx, "interaction failed", "interaction", name, "error", result.Err, "channel_id", i.ChannelID)
	}
}

func (b *Bot) handleCommand(i *discordgo.InteractionCreate) handlerResult {
	data := i.ApplicationCommandData()
	script, err := transliteration.ParseScript(data.Name)
	if err != nil {
		return handlerResult{Err: fmt.Errorf("unknown command %q: %w", data.Name, err)}
	}

	userID := interactionUserID(i)
	if !b.limiter.Allow(userID) {
		metrics.RateLimitHits.Inc()
		wait := b.limiter.RetryAfter(userID).Round(time.Second)
		return handlerResult{
			Response: ephemeral(fmt.Sprintf("⏳ Slow down! Try again in %s.", wait)),
			Err:      newUserError(errors.New("rate limited")),
		}
	}

	text := strings.TrimSpace(getOption(data.Options, "text"))
	if text == "" {
		return handlerResult{
			Response: ephemeral("❌ Give me some text to convert."),
			Err:      newUserError(errors.New("empty text")),
		}
	}
	if utf8.RuneCountInString(text) > maxCommandRunes {
		return handlerResult{
			Response: ephemeral(fmt.Sprintf("❌ Text must be %d characters or fewer.", maxCommandRunes)),
			Err:      newUserError(errors.New("text too long")),
		}
	}

	out := b.translator.Convert(text, script, "discord")
	return handlerResult{Response: &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{conversionEmbed(text, out, script)},
			Components: []discordgo.MessageComponent{suggestFixRow(script)},
		},
	}}
}

func (b *Bot) handleComponent(i *discordgo.InteractionCreate) handlerResult {
	customID := i.MessageComponentData().CustomID
	scriptName, ok := strings.CutPrefix(customID, suggestFixPrefix)
	if !ok {
		return handlerResult{}
	}

	_, output, ok := conversionFromMessage(i.Message)
	if !ok {
		return handlerResult{
			Response: ephemeral("❌ This message can no longer be corrected."),
			Err:      newUserError(errors.New("component on message without conversion")),
		}
	}

	return handlerResult{Response: &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: feedbackModalID + scriptName,
			Title:    "Suggest a Correction",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  suggestedInputID,
							Label:     "What should it say?",
							Style:     discordgo.TextInputShort,
							Value:     truncateRunes(output, maxFeedbackRunes),
							Required:  true,
							MaxLength: maxFeedbackRunes,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  commentInputID,
							Label:     "Anything else? (optional)",
							Style:     discordgo.TextInputParagraph,
							Required:  false,
							MaxLength: maxFeedbackRunes,
						},
					},
				},
			},
		},
	}}
}

func (b *Bot) handleModalSubmit(ctx context.Context, i *discordgo.InteractionCreate) handlerResult {
	data := i.ModalSubmitData()
	scriptName, ok := strings.CutPrefix(data.CustomID, feedbackModalID)
	if !ok {
		return handlerResult{}
	}
	script, err := transliteration.ParseScript(scriptName)
	if err != nil {
		return handlerResult{Err: fmt.Errorf("modal %q: %w", data.CustomID, err)}
	}

	input, output, ok := conversionFromMessage(i.Message)
	if !ok {
		return handlerResult{
			Response: ephemeral("❌ Couldn't find the original conversion."),
			Err:      newUserError(errors.New("modal without source message")),
		}
	}

	values := modalValues(data)
	suggested := strings.TrimSpace(values[suggestedInputID])
	if suggested == "" || suggested == output {
		return handlerResult{
			Response: ephemeral("⚠️ The suggestion matches the current conversion, nothing to record."),
			Err:      newUserError(errors.New("empty or unchanged suggestion")),
		}
	}

	_, err = b.feedback.CreateFeedback(ctx, db.CreateFeedbackParams{
		Source:        "discord",
		Script:        script.String(),
		InputText:     input,
		OutputText:    output,
		SuggestedText: sql.NullString{String: suggested, Valid: true},
		FeedbackText:  strings.TrimSpace(values[commentInputID]),
	})
	if err != nil {
		return handlerResult{
			Response: ephemeral("❌ Failed to record your correction. Please try again later."),
			Err:      fmt.Errorf("storing feedback: %w", err),
		}
	}
	metrics.FeedbackSubmissions.WithLabelValues("discord").Inc()

	return handlerResult{Response: ephemeral("Thanks! Your correction has been recorded.")}
}

func conversionEmbed(input, output string, script transliteration.Script) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: output,
		Color:       0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Input", Value: input},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: script.String()},
	}
}

// conversionFromMessage recovers the input and output from a message built
// by conversionEmbed.
func conversionFromMessage(m *discordgo.Message) (input, output string, ok bool) {
	if m == nil || len(m.Embeds) == 0 {
		return "", "", false
	}
	e := m.Embeds[0]
	for _, f := range e.Fields {
		if f.Name == "Input" {
			return f.Value, e.Description, true
		}
	}
	return "", "", false
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func suggestFixRow(script transliteration.Script) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Suggest Fix",
				CustomID: suggestFixPrefix + script.String(),
				Style:    discordgo.SecondaryButton,
			},
		},
	}
}

func ephemeral(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok {
				values[input.CustomID] = input.Value
			}
		}
	}
	return values
}

func getOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
