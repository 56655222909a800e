package messages

import (
	"strconv"

	"golang.org/x/text/language"
)

// AgainPayload is the button payload that restarts the round.
const AgainPayload = "/again"

// keypadWidth is the number of digit buttons per row.
const keypadWidth = 3

// Button is one selectable option; Data is sent back when it is pressed.
type Button struct {
	Text string
	Data string
}

// Keypad is a transport-neutral inline keyboard, row by row.
type Keypad [][]Button

// DigitKeypad returns "0".."9" in rows of three; the last row holds only "9".
// Each button carries its own label as payload.
func DigitKeypad() Keypad {
	var kp Keypad
	var row []Button
	for d := 0; d <= 9; d++ {
		label := strconv.Itoa(d)
		row = append(row, Button{Text: label, Data: label})
		if len(row) == keypadWidth {
			kp = append(kp, row)
			row = nil
		}
	}
	if len(row) > 0 {
		kp = append(kp, row)
	}
	return kp
}

// AgainKeypad returns a single localized "play again" button.
func AgainKeypad(tag language.Tag) Keypad {
	return Keypad{{{Text: Localize(tag, KeyPlayAgain, nil), Data: AgainPayload}}}
}

// Command is one entry of the client-side command menu.
type Command struct {
	Name        string // without the leading slash
	Description string
}

var commandDescriptions = map[language.Tag][]Command{
	Russian: {
		{Name: "start", Description: "Начальное приветствие"},
		{Name: "info", Description: "Информация о тебе"},
		{Name: "game", Description: "Угадай число"},
		{Name: "help", Description: "Список команд"},
	},
	English: {
		{Name: "start", Description: "Greeting"},
		{Name: "info", Description: "Information about you"},
		{Name: "game", Description: "Guess the number"},
		{Name: "help", Description: "List of commands"},
	},
}

// Commands returns the command menu for tag (base locale if unsupported).
func Commands(tag language.Tag) []Command {
	cmds, ok := commandDescriptions[tag]
	if !ok {
		cmds = commandDescriptions[Base()]
	}
	out := make([]Command, len(cmds))
	copy(out, cmds)
	return out
}
