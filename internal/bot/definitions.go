package bot

import "github.com/bwmarrin/discordgo"

func applicationCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:         slashCommandName,
			Description:  "Split expenses and track who owes whom in this channel",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "command",
					Description: "JOIN, USER, EXPENSE, PAY, SHOW or HELP",
					Required:    true,
				},
			},
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}
