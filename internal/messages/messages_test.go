package messages_test

import (
	"strconv"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/robalobadob/guessbot/internal/messages"
)

func TestLocalizeSubstitutes(t *testing.T) {
	got := messages.Localize(messages.Russian, messages.KeyWin, map[string]any{
		messages.ParamRandomNumber: 4,
		messages.ParamAttempts:     2,
	})
	want := "Ты угадал, МОЛОДЕЦ! Было загадано число 4. Попыток: 2"
	if got != want {
		t.Fatalf("Localize = %q, want %q", got, want)
	}
}

func TestLocalizeInfoName(t *testing.T) {
	for _, tag := range messages.Supported() {
		got := messages.Localize(tag, messages.KeyInfo, map[string]any{messages.ParamName: "Anna"})
		if !strings.Contains(got, "Anna") || strings.Contains(got, "{name}") {
			t.Fatalf("%s: unexpected info message %q", tag, got)
		}
	}
}

func TestLocalizeUnknownKey(t *testing.T) {
	if got := messages.Localize(messages.English, messages.Key("nope"), nil); got != "" {
		t.Fatalf("unknown key rendered %q, want empty", got)
	}
}

func TestLocalizeUnsupportedTagFallsBack(t *testing.T) {
	got := messages.Localize(language.German, messages.KeyStart, nil)
	if got != messages.Localize(messages.Russian, messages.KeyStart, nil) {
		t.Fatalf("expected base locale text, got %q", got)
	}
}

func TestLocalizeIsPure(t *testing.T) {
	params := map[string]any{messages.ParamAttempts: 3}
	a := messages.Localize(messages.English, messages.KeyWrongGuess, params)
	b := messages.Localize(messages.English, messages.KeyWrongGuess, params)
	if a != b {
		t.Fatalf("Localize not deterministic: %q vs %q", a, b)
	}
	if len(params) != 1 {
		t.Fatal("params mutated")
	}
	if !strings.Contains(a, "Attempts: 3") {
		t.Fatalf("unexpected wrong_guess text %q", a)
	}
}

func TestEveryKeyTranslated(t *testing.T) {
	keys := []messages.Key{
		messages.KeyStart, messages.KeyInfo, messages.KeyGameStart, messages.KeyGuessPrompt,
		messages.KeyWin, messages.KeyWrongGuess, messages.KeyDefault, messages.KeyHelp,
		messages.KeyNoSession, messages.KeyPlayAgain,
	}
	for _, tag := range messages.Supported() {
		for _, k := range keys {
			if messages.Localize(tag, k, nil) == "" {
				t.Errorf("%s: missing template %q", tag, k)
			}
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		code string
		want language.Tag
	}{
		{"", messages.Russian},
		{"ru", messages.Russian},
		{"ru-RU", messages.Russian},
		{"en", messages.English},
		{"en-GB", messages.English},
		{"de", messages.Russian},
		{"???", messages.Russian},
	}
	for _, tt := range tests {
		if got := messages.Match(tt.code, messages.Russian); got != tt.want {
			t.Errorf("Match(%q) = %s, want %s", tt.code, got, tt.want)
		}
	}
	if got := messages.Match("de", messages.English); got != messages.English {
		t.Errorf("Match with English fallback = %s", got)
	}
}

func TestParse(t *testing.T) {
	if tag, ok := messages.Parse("en"); !ok || tag != messages.English {
		t.Fatalf("Parse(en) = %s, %v", tag, ok)
	}
	if _, ok := messages.Parse("klingon"); ok {
		t.Fatal("Parse should reject unsupported locale")
	}
}

func TestDigitKeypad(t *testing.T) {
	kp := messages.DigitKeypad()
	if len(kp) != 4 {
		t.Fatalf("rows = %d, want 4", len(kp))
	}
	wantRows := []int{3, 3, 3, 1}
	d := 0
	for i, row := range kp {
		if len(row) != wantRows[i] {
			t.Fatalf("row %d has %d buttons, want %d", i, len(row), wantRows[i])
		}
		for _, b := range row {
			label := strconv.Itoa(d)
			if b.Text != label || b.Data != label {
				t.Fatalf("button %d = %+v", d, b)
			}
			d++
		}
	}
}

func TestAgainKeypad(t *testing.T) {
	kp := messages.AgainKeypad(messages.English)
	if len(kp) != 1 || len(kp[0]) != 1 {
		t.Fatalf("unexpected shape: %+v", kp)
	}
	if kp[0][0].Data != messages.AgainPayload || kp[0][0].Text != "Play again" {
		t.Fatalf("unexpected button: %+v", kp[0][0])
	}
}

func TestCommands(t *testing.T) {
	cmds := messages.Commands(messages.Russian)
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		if c.Description == "" || strings.HasPrefix(c.Name, "/") {
			t.Fatalf("bad command entry %+v", c)
		}
		names = append(names, c.Name)
	}
	if got := strings.Join(names, ","); got != "start,info,game,help" {
		t.Fatalf("commands = %s", got)
	}

	cmds[0].Name = "mutated"
	if messages.Commands(messages.Russian)[0].Name != "start" {
		t.Fatal("Commands returned shared slice")
	}
	if len(messages.Commands(language.Japanese)) != 4 {
		t.Fatal("unsupported tag should fall back to base menu")
	}
}
