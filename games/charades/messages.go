/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package charades

// Intent types accepted from clients.
const (
	IntentCreateGame     = "create_game"
	IntentJoinGame       = "join_game"
	IntentRename         = "rename"
	IntentStartRound     = "start_round"
	IntentSelectCategory = "select_category"
	IntentStartTimer     = "start_timer"
	IntentCorrectGuess   = "correct_guess"
	IntentSkipWord       = "skip_word"
	IntentEndRound       = "end_round"
)

// Intent is every message a client can send; fields unused by a given type
// are left empty.
type Intent struct {
	Type     string `json:"type"`
	Code     string `json:"code,omitempty"`
	Identity string `json:"identity,omitempty"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
}

// GameCreatedMessage is sent only to the creator.
type GameCreatedMessage struct {
	Type string `json:"type"` // "game_created"
	Code string `json:"code"`
}

// JoinedGameMessage is sent only to the joining connection. CurrentWord is
// filled in when a non-guesser lands in the middle of a round.
type JoinedGameMessage struct {
	Type        string   `json:"type"` // "joined_game"
	Identity    string   `json:"identity"`
	Rejoined    bool     `json:"rejoined"`
	Snapshot    Snapshot `json:"snapshot"`
	CurrentWord string   `json:"currentWord,omitempty"`
}

// PlayerJoinedMessage goes to everyone in the room except the joiner.
type PlayerJoinedMessage struct {
	Type     string   `json:"type"` // "player_joined"
	Identity string   `json:"identity"`
	Name     string   `json:"name"`
	Rejoined bool     `json:"rejoined"`
	Snapshot Snapshot `json:"snapshot"`
}

type PlayerLeftMessage struct {
	Type     string   `json:"type"` // "player_left"
	Identity string   `json:"identity"`
	Name     string   `json:"name"`
	Snapshot Snapshot `json:"snapshot"`
}

// PlayerRenamedMessage goes to the whole room, renamer included.
type PlayerRenamedMessage struct {
	Type     string   `json:"type"` // "player_renamed"
	Identity string   `json:"identity"`
	Name     string   `json:"name"`
	Snapshot Snapshot `json:"snapshot"`
}

type RoundStartedMessage struct {
	Type        string   `json:"type"` // "round_started"
	GuesserName string   `json:"guesserName"`
	Snapshot    Snapshot `json:"snapshot"`
}

type CategorySelectedMessage struct {
	Type     string   `json:"type"` // "category_selected"
	Category string   `json:"category"`
	Snapshot Snapshot `json:"snapshot"`
}

// TimerStartedMessage carries the first word to everyone; hiding it from the
// guesser is the client's job.
type TimerStartedMessage struct {
	Type     string   `json:"type"` // "timer_started"
	Word     string   `json:"word"`
	Snapshot Snapshot `json:"snapshot"`
}

type WordChangedMessage struct {
	Type       string   `json:"type"` // "word_changed"
	Word       string   `json:"word"`
	RoundScore int      `json:"roundScore"`
	RoundSkips int      `json:"roundSkips"`
	Action     Action   `json:"action"`
	Snapshot   Snapshot `json:"snapshot"`
}

type RoundEndedMessage struct {
	Type       string   `json:"type"` // "round_ended"
	FinalScore int      `json:"finalScore"`
	FinalSkips int      `json:"finalSkips"`
	GuesserID  string   `json:"guesserId"`
	Snapshot   Snapshot `json:"snapshot"`
}

// ErrorMessage is unicast and never ends the connection.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

func NewErrorMessage(message string) ErrorMessage {
	return ErrorMessage{Type: "error", Message: message}
}
