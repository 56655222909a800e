// internal/messages/messages.go
//
// Reply templates for the bot.
// Responsibilities:
//   - Hold one immutable template table per supported locale.
//   - Render a template by substituting {placeholder} params (Localize).
//   - Resolve a client language code to a supported locale (Match).
//
// Russian is the base locale: it carries the bot's original wording and
// is used whenever a language code cannot be matched.

package messages

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Key names one reply template.
type Key string

const (
	KeyStart       Key = "start"        // fixed greeting
	KeyInfo        Key = "info"         // {name}
	KeyGameStart   Key = "game_start"   // fixed instructions
	KeyGuessPrompt Key = "guess_prompt" // sent with the digit keypad
	KeyWin         Key = "win"          // {randomNumber}, {attempts}
	KeyWrongGuess  Key = "wrong_guess"  // {attempts}, sent with the digit keypad
	KeyDefault     Key = "default"      // unrecognized command
	KeyHelp        Key = "help"         // command list
	KeyNoSession   Key = "no_session"   // guess without an active round
	KeyPlayAgain   Key = "play_again"   // label of the restart button
)

// Placeholder names used by the templates.
const (
	ParamName         = "name"
	ParamRandomNumber = "randomNumber"
	ParamAttempts     = "attempts"
)

// Supported locales, base first.
var (
	Russian = language.Russian
	English = language.English
)

var supported = []language.Tag{Russian, English}

var matcher = language.NewMatcher(supported)

var tables = map[language.Tag]map[Key]string{
	Russian: {
		KeyStart:       "Привет, это бот Усмана",
		KeyInfo:        "Твое имя {name}",
		KeyGameStart:   "Сейчас я загадаю число от 0 до 9, а ты должен его угадать!",
		KeyGuessPrompt: "Отгадывай!",
		KeyWin:         "Ты угадал, МОЛОДЕЦ! Было загадано число {randomNumber}. Попыток: {attempts}",
		KeyWrongGuess:  "К сожалению, ты не угадал. Попробуй еще раз! Попыток: {attempts}",
		KeyDefault:     "Извините, я не понимаю ваш запрос. Воспользуйтесь командой /help для получения списка команд.",
		KeyHelp:        "Доступные команды:\n/start - Начальное приветствие\n/info - Информация о вас\n/game - Угадай число\n/help - Список команд",
		KeyNoSession:   "Сначала начни игру командой /game",
		KeyPlayAgain:   "Играть еще раз",
	},
	English: {
		KeyStart:       "Hi, this is Usman's bot",
		KeyInfo:        "Your name is {name}",
		KeyGameStart:   "I'm going to pick a number from 0 to 9, and you have to guess it!",
		KeyGuessPrompt: "Take a guess!",
		KeyWin:         "You got it, WELL DONE! The number was {randomNumber}. Attempts: {attempts}",
		KeyWrongGuess:  "Sorry, that's not it. Try again! Attempts: {attempts}",
		KeyDefault:     "Sorry, I don't understand your request. Use /help to see the list of commands.",
		KeyHelp:        "Available commands:\n/start - Greeting\n/info - Information about you\n/game - Guess the number\n/help - List of commands",
		KeyNoSession:   "Please start the game first using /game",
		KeyPlayAgain:   "Play again",
	},
}

// Supported returns the supported locales, base locale first.
func Supported() []language.Tag {
	out := make([]language.Tag, len(supported))
	copy(out, supported)
	return out
}

// Base returns the base locale.
func Base() language.Tag { return Russian }

// Localize renders the template for key in locale tag.
// Every {param} occurrence is replaced by fmt.Sprint of its value; unknown
// placeholders stay as they are. An unknown key renders as "". Unsupported
// tags fall back to the base locale.
func Localize(tag language.Tag, key Key, params map[string]any) string {
	table, ok := tables[tag]
	if !ok {
		table = tables[Base()]
	}
	msg := table[key]
	for k, v := range params {
		msg = strings.ReplaceAll(msg, "{"+k+"}", fmt.Sprint(v))
	}
	return msg
}

// Match resolves a client language code ("en", "ru-RU", "pt-br", ...) to a
// supported locale. Empty, invalid, or unrelated codes yield fallback.
func Match(code string, fallback language.Tag) language.Tag {
	code = strings.TrimSpace(code)
	if code == "" {
		return fallback
	}
	tag, err := language.Parse(code)
	if err != nil {
		return fallback
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return fallback
	}
	return supported[idx]
}

// Parse resolves a configured locale name, reporting whether it is supported.
func Parse(name string) (language.Tag, bool) {
	tag := Match(name, language.Und)
	if tag == language.Und {
		return Base(), false
	}
	return tag, true
}
