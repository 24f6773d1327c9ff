package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-redis/redis"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

const (
	jsonFormatName = ".json"

	commandsFile     = "commands"
	languageSubPath  = "language"
	DefaultAssetsDir = "assets"
)

type GlobalBot struct {
	BotLang string `json:"bot_lang,omitempty"`

	Bot    *tgbotapi.BotAPI
	Chanel tgbotapi.UpdatesChannel
	Rdb    *redis.Client

	Commands map[string]string
	Language map[string]map[string]string
	Admins   map[int64]bool

	BotToken string `json:"bot_token,omitempty"`
	BotLink  string `json:"bot_link,omitempty"`
}

func FillBotsConfig(token, botLink, lang string, admins []int64) *GlobalBot {
	b := &GlobalBot{
		BotLang:  lang,
		BotToken: token,
		BotLink:  botLink,
		Commands: map[string]string{},
		Language: map[string]map[string]string{},
		Admins:   map[int64]bool{},
	}

	for _, id := range admins {
		b.Admins[id] = true
	}

	return b
}

func (b *GlobalBot) GetBotLang() string {
	return b.BotLang
}

func (b *GlobalBot) GetBot() *tgbotapi.BotAPI {
	return b.Bot
}

// BotName is the bot's username: from Telegram once the bot is started,
// otherwise the last path element of the bot link.
func (b *GlobalBot) BotName() string {
	if bot := b.GetBot(); bot != nil && bot.Self.UserName != "" {
		return bot.Self.UserName
	}

	link := strings.TrimRight(b.BotLink, "/")
	return strings.TrimPrefix(link[strings.LastIndex(link, "/")+1:], "@")
}

// LangText formats the text stored under key. Missing keys fall back to the
// key itself so a broken dictionary is visible but never fatal.
func (b *GlobalBot) LangText(lang, key string, values ...interface{}) string {
	formatText, ok := b.Language[lang][key]
	if !ok {
		formatText, ok = b.Language[b.BotLang][key]
	}
	if !ok {
		return key
	}
	return fmt.Sprintf(formatText, values...)
}

func (b *GlobalBot) GetTexts(lang string) map[string]string {
	return b.Language[lang]
}

func (b *GlobalBot) CheckAdmin(userID int64) bool {
	return b.Admins[userID]
}

func (b *GlobalBot) ParseCommandsList(assetsDir string) error {
	bytes, err := os.ReadFile(filepath.Join(assetsDir, commandsFile+jsonFormatName))
	if err != nil {
		return errors.Wrap(err, "read commands list")
	}

	commands := make(map[string]string)
	if err := json.Unmarshal(bytes, &commands); err != nil {
		return errors.Wrap(err, "decode commands list")
	}

	b.Commands = commands
	return nil
}

func (b *GlobalBot) ParseLangMap(assetsDir string) error {
	bytes, err := os.ReadFile(filepath.Join(assetsDir, languageSubPath, b.BotLang+jsonFormatName))
	if err != nil {
		return errors.Wrap(err, "read language map")
	}

	dictionary := make(map[string]string)
	if err := json.Unmarshal(bytes, &dictionary); err != nil {
		return errors.Wrap(err, "decode language map")
	}

	b.Language = make(map[string]map[string]string)
	b.Language[b.BotLang] = dictionary
	return nil
}

// CommandFromText turns a reply keyboard label into the command it stands
// for. Any other text is returned unchanged.
func (b *GlobalBot) CommandFromText(text, userLang string) string {
	searchText := strings.TrimSpace(text)
	for key, label := range b.GetTexts(userLang) {
		if label != searchText {
			continue
		}
		if command, ok := b.Commands[key]; ok {
			return command
		}
	}

	return text
}
