package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"github.com/susu3304/warikan/internal/commands"
	"github.com/susu3304/warikan/internal/group"
	"github.com/susu3304/warikan/internal/ledger"
)

const (
	slashCommandName = "warikan"

	// Discord rejects message content longer than this.
	maxMessageLength = 2000
)

type Bot struct {
	session *discordgo.Session
	groups  *group.Service
	prefix  string
}

func New(token, prefix string, groups *group.Service) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	bot := &Bot{
		session: session,
		groups:  groups,
		prefix:  prefix,
	}

	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onGuildCreate)
	session.AddHandler(bot.onMessageCreate)
	session.AddHandler(bot.onInteractionCreate)

	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent | discordgo.IntentsGuilds

	return bot, nil
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	log.Info().Msg("Discord bot is running")
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Info().Msgf("%s is connected!", event.User.Username)

	for _, guild := range event.Guilds {
		if err := b.registerGuildCommands(guild.ID); err != nil {
			log.Error().Err(err).Str("guild", guild.ID).Msg("failed to register commands")
		}
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, event *discordgo.GuildCreate) {
	if err := b.registerGuildCommands(event.ID); err != nil {
		log.Error().Err(err).Str("guild", event.ID).Msg("failed to register commands")
	}
}

func (b *Bot) registerGuildCommands(guildID string) error {
	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, guildID, applicationCommands())
	if err != nil {
		return err
	}
	log.Debug().Str("guild", guildID).Msg("registered application commands")
	return nil
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	line, ok := stripPrefix(m.Content, b.prefix)
	if !ok {
		return
	}
	reply := b.run(context.Background(), m.ChannelID, m.Author, line)
	for _, chunk := range splitMessage(reply, maxMessageLength) {
		if _, err := s.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			log.Error().Err(err).Str("channel", m.ChannelID).Msg("failed to send reply")
			return
		}
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != slashCommandName {
		return
	}

	var line string
	for _, opt := range data.Options {
		if opt.Name == "command" {
			line = opt.StringValue()
		}
	}
	var author *discordgo.User
	if i.Member != nil {
		author = i.Member.User
	} else {
		author = i.User
	}

	reply := b.run(context.Background(), i.ChannelID, author, line)
	chunks := splitMessage(reply, maxMessageLength)
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: chunks[0]},
	})
	if err != nil {
		log.Error().Err(err).Str("channel", i.ChannelID).Msg("failed to respond to interaction")
		return
	}
	for _, chunk := range chunks[1:] {
		if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: chunk}); err != nil {
			log.Error().Err(err).Str("channel", i.ChannelID).Msg("failed to send followup")
			return
		}
	}
}

// run executes one command line against the channel's group and always
// returns something to post back.
func (b *Bot) run(ctx context.Context, channelID string, author *discordgo.User, line string) string {
	g := b.groups.Open(channelID)
	line = normalizeMentions(line)

	fields := strings.Fields(line)
	if len(fields) > 0 && strings.EqualFold(fields[0], "JOIN") {
		return join(ctx, g, author)
	}

	out, err := commands.New(g).Execute(ctx, line)
	if err != nil {
		if errors.Is(err, commands.ErrUnknownCommand) {
			return "Invalid command. Please try again.\n" + commands.Usage
		}
		return err.Error()
	}
	if out == "" {
		return "OK"
	}
	return out
}

func join(ctx context.Context, g *group.Group, author *discordgo.User) string {
	if author == nil {
		return "cannot tell who sent this command"
	}
	p := ledger.Participant{ID: author.ID, Name: author.Username}
	if err := g.Register(ctx, p); err != nil {
		if errors.Is(err, ledger.ErrDuplicateParticipant) {
			return fmt.Sprintf("<@%s> is already a participant", author.ID)
		}
		return err.Error()
	}
	return fmt.Sprintf("<@%s> joined as %s", author.ID, p.DisplayName())
}

func stripPrefix(content, prefix string) (string, bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, prefix) {
		return "", false
	}
	rest := content[len(prefix):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

var mentionRe = regexp.MustCompile(`<@!?([0-9]+)>`)

// normalizeMentions turns <@123> and <@!123> into the raw user id so mentions
// can be used wherever a participant id is expected.
func normalizeMentions(text string) string {
	return mentionRe.ReplaceAllString(text, "$1")
}

// splitMessage breaks text into chunks of at most limit bytes, preferring
// line boundaries. It always returns at least one chunk.
func splitMessage(text string, limit int) []string {
	var chunks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		for len(line) > limit {
			flush()
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if cur.Len() > 0 && cur.Len()+1+len(line) > limit {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	flush()

	if len(chunks) == 0 {
		return []string{""}
	}
	return chunks
}
