package gateway

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/novahq/nova/internal/planner"
)

type DiscordGateway struct {
	Session *discordgo.Session
	Runner  TaskRunner
}

func NewDiscordGateway(token string, runner TaskRunner) (*DiscordGateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	dg := &DiscordGateway{
		Session: session,
		Runner:  runner,
	}
	session.AddHandler(dg.onMessage)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages

	return dg, nil
}

func (dg *DiscordGateway) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot {
		return
	}

	log.Printf("[%s] %s", m.Author.Username, m.Content)

	task := planner.Task{
		ID:          uuid.New().String(),
		Description: m.Content,
	}

	result, err := dg.Runner.Execute(context.Background(), task)
	response := formatResult(result, err)

	if _, err := s.ChannelMessageSend(m.ChannelID, response); err != nil {
		log.Printf("Error sending discord reply: %v", err)
	}
}

func (dg *DiscordGateway) Start() error {
	if err := dg.Session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	log.Printf("Authorized on account %s", dg.Session.State.User.Username)
	return nil
}

func (dg *DiscordGateway) Send(channelID string, text string) error {
	_, err := dg.Session.ChannelMessageSend(channelID, text)
	return err
}

func (dg *DiscordGateway) Stop() error {
	return dg.Session.Close()
}
