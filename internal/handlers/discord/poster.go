package discord

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// ErrMessageNotFound is returned when a stored message no longer exists
var ErrMessageNotFound = errors.New("message not found")

// Poster is the slice of the Discord REST API the bot writes through
type Poster interface {
	SendMessage(channelID, content string) (string, error)
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) (string, error)
	EditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed) error
	AddReaction(channelID, messageID, emoji string) error
	RemoveReaction(channelID, messageID, emoji, userID string) error
}

// sessionPoster implements Poster on a live session
type sessionPoster struct {
	session *discordgo.Session
}

// NewSessionPoster wraps a discordgo session
func NewSessionPoster(session *discordgo.Session) Poster {
	return &sessionPoster{session: session}
}

func (p *sessionPoster) SendMessage(channelID, content string) (string, error) {
	msg, err := p.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", translateError(err)
	}
	return msg.ID, nil
}

func (p *sessionPoster) SendEmbed(channelID string, embed *discordgo.MessageEmbed) (string, error) {
	msg, err := p.session.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		return "", translateError(err)
	}
	return msg.ID, nil
}

func (p *sessionPoster) EditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed) error {
	_, err := p.session.ChannelMessageEditEmbed(channelID, messageID, embed)
	return translateError(err)
}

func (p *sessionPoster) AddReaction(channelID, messageID, emoji string) error {
	return translateError(p.session.MessageReactionAdd(channelID, messageID, emoji))
}

func (p *sessionPoster) RemoveReaction(channelID, messageID, emoji, userID string) error {
	return translateError(p.session.MessageReactionRemove(channelID, messageID, emoji, userID))
}

// translateError maps Discord's unknown message/channel errors to ErrMessageNotFound
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return ErrMessageNotFound
		}
		if restErr.Message != nil && (restErr.Message.Code == discordgo.ErrCodeUnknownMessage || restErr.Message.Code == discordgo.ErrCodeUnknownChannel) {
			return ErrMessageNotFound
		}
	}
	return err
}
