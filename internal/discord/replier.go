package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// messageSender is the part of *discordgo.Session used to reply
type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// channelReplier sends replies to the channel a command was posted in
type channelReplier struct {
	sender    messageSender
	channelID string
}

func (r channelReplier) SendText(ctx context.Context, message string) error {
	_, err := r.sender.ChannelMessageSend(r.channelID, message, discordgo.WithContext(ctx))
	return err
}

// SendImage posts imageURL as an embed. Every call builds its own embed.
func (r channelReplier) SendImage(ctx context.Context, imageURL string) error {
	embed := &discordgo.MessageEmbed{
		Image: &discordgo.MessageEmbedImage{URL: imageURL},
	}
	_, err := r.sender.ChannelMessageSendEmbed(r.channelID, embed, discordgo.WithContext(ctx))
	return err
}
