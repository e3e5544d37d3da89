package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"rulesofwar/game"
	"rulesofwar/metrics"
)

// record is one committed action of the current turn: the board as it was
// before the action and the inputs that produced it.
type record struct {
	Checkpoint *game.Board
	Inputs     []Input
}

// SessionDescriptor is everything needed to rebuild a session: the rules,
// the starting map and every completed turn's inputs.
type SessionDescriptor struct {
	Rules   game.Rules         `json:"rules"`
	Map     game.MapDescriptor `json:"map"`
	History [][][]Input        `json:"history"`
}

// Summary is the current team's standing.
type Summary struct {
	Day   int
	Team  game.TeamID
	Name  string
	Cash  int
	Units int
	Ready int
}

// Engine sequences turns. It owns the board, feeds inputs to the live
// step and keeps the checkpoints used to roll back. It is not safe for
// concurrent use.
type Engine struct {
	board      *game.Board
	rules      *game.Rules
	initial    game.MapDescriptor
	turnStart  *game.Board
	checkpoint *game.Board
	history    []record
	replay     [][][]Input
	state      State
	pending    []Input
	notes      []Notification
	winners    []game.TeamID
	over       bool
	turns      []metrics.TurnMetric

	log      zerolog.Logger
	metrics  metrics.Collector
	duration int
}

type Option func(e *Engine)

func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

func WithMetrics(c metrics.Collector) Option {
	return func(e *Engine) {
		e.metrics = c
	}
}

// WithNotificationDuration sets how many frames notifications stay up.
func WithNotificationDuration(frames int) Option {
	return func(e *Engine) {
		e.duration = frames
	}
}

// New loads a map and replays the recorded turns on it. Replaying must
// succeed input by input, otherwise the log does not belong to the map.
func New(rules *game.Rules, m game.MapDescriptor, replay [][][]Input, options ...Option) (*Engine, error) {
	b, err := game.LoadBoard(rules, m)
	if err != nil {
		return nil, err
	}
	e := newEngine(b, m, options)
	for i, turn := range replay {
		for j, action := range turn {
			for _, in := range action {
				if _, err := e.Handle(in); err != nil {
					return nil, fmt.Errorf("cannot replay turn %d action %d: %w", i, j, err)
				}
			}
			if len(e.pending) > 0 {
				return nil, fmt.Errorf("cannot replay turn %d action %d: action left open: %w", i, j, ErrIllegalTransition)
			}
		}
		if err := e.EndTurn(); err != nil {
			return nil, fmt.Errorf("cannot replay turn %d: %w", i, err)
		}
	}
	e.notes = nil
	e.announceTurn()
	return e, nil
}

// NewFromBoard starts a session on an existing board.
func NewFromBoard(b *game.Board, options ...Option) *Engine {
	return newEngine(b, b.Export(), options)
}

// Load rebuilds an exported session.
func Load(sd SessionDescriptor, options ...Option) (*Engine, error) {
	rules := sd.Rules
	if err := rules.Prepare(); err != nil {
		return nil, err
	}
	return New(&rules, sd.Map, sd.History, options...)
}

func newEngine(b *game.Board, initial game.MapDescriptor, options []Option) *Engine {
	e := &Engine{
		board:    b,
		rules:    b.Rules,
		initial:  initial,
		state:    begin{},
		log:      zerolog.Nop(),
		metrics:  metrics.NewDummyCollector(),
		duration: DefaultNotificationDuration,
	}
	for _, option := range options {
		option(e)
	}
	if t := b.CurrentTeam(); t != nil && !t.Active {
		b.EndTurn()
	}
	e.beginTurn()
	e.turnStart = b.Copy()
	e.checkpoint = e.turnStart
	return e
}

// Handle feeds one input to the live step.
func (e *Engine) Handle(in Input) (Signal, error) {
	if e.over {
		return Continue, ErrGameOver
	}
	var fx Effects
	next, sig, err := e.state.Step(e.board, in, &fx)
	if err != nil {
		return Continue, err
	}
	e.pending = append(e.pending, in)
	e.apply(fx)

	switch sig {
	case Continue:
		e.state = next
	case Commit:
		e.commit()
	case Trash:
		e.metrics.AddTrash()
		e.rollback()
	case Undo:
		e.undo()
	case Restart:
		e.restart()
	case End:
		e.rollback()
		if err := e.EndTurn(); err != nil {
			return sig, err
		}
	default:
		panic(fmt.Sprintf("unexpected signal %v", sig))
	}
	e.log.Debug().Str("input", in.String()).Stringer("signal", sig).Msg("handled input")
	return sig, nil
}

func (e *Engine) apply(fx Effects) {
	for _, ex := range fx.Exchanges {
		e.metrics.AddAttack()
		e.notify("red", e.duration+ex.Dealt+ex.Taken, "Dealt %d, took %d", ex.Dealt, ex.Taken)
		for _, team := range ex.Eliminated {
			e.Defeat(team)
		}
	}
	for _, c := range fx.Captures {
		e.metrics.AddCapture()
		if !c.Captured {
			e.notify("yellow", e.duration, "Capture %v: %d%%", c.At, c.Progress)
			continue
		}
		e.notify(e.board.CurrentTeam().Color, e.duration, "Captured %v", c.At)
		if c.HQ {
			e.announceDefeat(c.From)
		}
	}
	for _, team := range fx.Defeated {
		e.announceDefeat(team)
	}
	for range fx.Built {
		e.metrics.AddBuild()
	}
}

func (e *Engine) commit() {
	e.history = append(e.history, record{Checkpoint: e.checkpoint, Inputs: e.pending})
	e.pending = nil
	e.checkpoint = e.board.Copy()
	e.state = begin{}
	e.metrics.AddCommit()
	e.log.Debug().Int("day", e.board.Day).Int("team", e.board.Turn).Int("history", len(e.history)).Msg("committed action")
}

func (e *Engine) rollback() {
	e.board = e.checkpoint.Copy()
	e.pending = nil
	e.state = begin{}
}

func (e *Engine) undo() {
	e.metrics.AddUndo()
	if n := len(e.history); n > 0 {
		e.checkpoint = e.history[n-1].Checkpoint
		e.history = e.history[:n-1]
	} else {
		e.checkpoint = e.turnStart
	}
	e.rollback()
	e.log.Debug().Int("history", len(e.history)).Msg("undid action")
}

func (e *Engine) restart() {
	e.metrics.AddRestart()
	e.history = nil
	e.checkpoint = e.turnStart
	e.rollback()
	e.log.Debug().Int("day", e.board.Day).Int("team", e.board.Turn).Msg("restarted turn")
}

// Defeat deactivates a team and removes its units. Its territory stays.
func (e *Engine) Defeat(team game.TeamID) {
	t := e.board.Team(team)
	if t == nil || !t.Active {
		return
	}
	e.board.Defeat(team)
	e.announceDefeat(team)
}

func (e *Engine) announceDefeat(team game.TeamID) {
	t := e.board.Team(team)
	if t == nil {
		return
	}
	e.notify(t.Color, e.duration, "%s defeated", t.Name)
	e.log.Info().Str("team", t.Name).Int("day", e.board.Day).Msg("team defeated")
}

// EndTurn closes the current team's turn and starts the next one. The
// action in progress must be finished or abandoned first.
func (e *Engine) EndTurn() error {
	if e.over {
		return ErrGameOver
	}
	if _, ok := e.state.(begin); !ok || len(e.pending) > 0 {
		return fmt.Errorf("cannot end turn mid-action: %w", ErrIllegalTransition)
	}

	turn := make([][]Input, len(e.history))
	for i, c := range e.history {
		turn[i] = c.Inputs
	}
	e.replay = append(e.replay, turn)
	e.history = nil
	e.turns = append(e.turns, e.metrics.Complete())

	e.board.Refresh()
	e.board.EndTurn()
	if winners, ok := e.victors(); ok {
		e.over = true
		e.winners = winners
		for _, id := range winners {
			t := e.board.Team(id)
			e.notify(t.Color, e.duration, "%s wins", t.Name)
		}
		e.log.Info().Int("day", e.board.Day).Interface("winners", winners).Msg("game over")
	} else {
		e.beginTurn()
	}
	e.turnStart = e.board.Copy()
	e.checkpoint = e.turnStart
	e.state = begin{}
	return nil
}

// victors returns the active teams when all of them are allied.
func (e *Engine) victors() ([]game.TeamID, bool) {
	var active []game.TeamID
	for _, t := range e.board.Teams {
		if t.Active {
			active = append(active, t.ID)
		}
	}
	for _, a := range active {
		for _, o := range active {
			if !e.board.IsAllied(a, o) {
				return nil, false
			}
		}
	}
	return active, true
}

func (e *Engine) beginTurn() {
	t := e.board.CurrentTeam()
	if t == nil || !t.Active {
		return
	}
	t.Cash += e.board.Income(t.ID)
	serviced := e.board.Resupply(t.ID)
	e.metrics.Start(e.board.Day, e.board.Turn)
	e.announceTurn()
	e.log.Info().Int("day", e.board.Day).Str("team", t.Name).Int("cash", t.Cash).Int("resupplied", len(serviced)).Msg("turn started")
}

func (e *Engine) announceTurn() {
	if t := e.board.CurrentTeam(); t != nil && !e.over {
		e.notify(t.Color, e.duration, "Day %d / %s advance", e.board.Day, t.Name)
	}
}

func (e *Engine) Expects() InputKind {
	return e.state.Expects()
}

func (e *Engine) Choices() Choices {
	return e.state.Choices()
}

// CurrentTeam returns a copy of the team whose turn it is.
func (e *Engine) CurrentTeam() game.Team {
	if t := e.board.CurrentTeam(); t != nil {
		return *t
	}
	return game.Team{ID: game.NoTeam}
}

func (e *Engine) Summary() Summary {
	t := e.CurrentTeam()
	s := Summary{Day: e.board.Day, Team: t.ID, Name: t.Name, Cash: t.Cash}
	for _, u := range e.board.UnitsOf(t.ID) {
		s.Units++
		if u.Ready {
			s.Ready++
		}
	}
	return s
}

// Forecast previews attacking target while a target is being chosen.
func (e *Engine) Forecast(target game.Coord) (game.Strike, game.Strike, bool) {
	a, ok := e.state.(attack)
	if !ok || !a.Choices().HasCoord(target) {
		return game.Strike{}, game.Strike{}, false
	}
	hit, counter, err := e.board.Forecast(e.board.Unit(a.unit).Pos, target)
	if err != nil {
		return game.Strike{}, game.Strike{}, false
	}
	return hit, counter, true
}

// Board returns the live board. Callers must not mutate it.
func (e *Engine) Board() *game.Board {
	return e.board
}

func (e *Engine) Over() bool {
	return e.over
}

func (e *Engine) Winners() []game.TeamID {
	return e.winners
}

// Replay returns the inputs of every completed turn.
func (e *Engine) Replay() [][][]Input {
	return e.replay
}

// Turns returns the metrics of every completed turn.
func (e *Engine) Turns() []metrics.TurnMetric {
	return e.turns
}

// Export returns the session in its load form. The turn in progress is not
// part of it.
func (e *Engine) Export() SessionDescriptor {
	return SessionDescriptor{Rules: *e.rules, Map: e.initial, History: e.replay}
}
