package discord

import "github.com/bwmarrin/discordgo"

// OptionMap indexes slash command options by name.
func OptionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// IntOption returns the integer option name, or ok=false when absent.
func IntOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) (int64, bool) {
	opt, ok := OptionMap(options)[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionInteger {
		return 0, false
	}
	return opt.IntValue(), true
}

// UserIDOption returns the ID of the user option name, or "" when absent.
func UserIDOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	opt, ok := OptionMap(options)[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionUser {
		return ""
	}
	if id, ok := opt.Value.(string); ok {
		return id
	}
	return ""
}
