package metrics

import (
	"sync/atomic"
	"time"
)

// TurnMetric summarizes one team's turn.
type TurnMetric struct {
	Day       int
	Team      int
	StartTime time.Time
	Duration  time.Duration
	Commits   int
	Trashes   int
	Undos     int
	Restarts  int
	Attacks   int
	Captures  int
	Builds    int
}

type Collector interface {
	Start(day, team int)
	AddCommit()
	AddTrash()
	AddUndo()
	AddRestart()
	AddAttack()
	AddCapture()
	AddBuild()
	Complete() TurnMetric
}

type collector struct {
	day       int
	team      int
	startTime time.Time
	commits   atomic.Int32
	trashes   atomic.Int32
	undos     atomic.Int32
	restarts  atomic.Int32
	attacks   atomic.Int32
	captures  atomic.Int32
	builds    atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

// Start resets the counters for a new turn.
func (m *collector) Start(day, team int) {
	m.day = day
	m.team = team
	m.startTime = time.Now()
	for _, c := range []*atomic.Int32{&m.commits, &m.trashes, &m.undos, &m.restarts, &m.attacks, &m.captures, &m.builds} {
		c.Store(0)
	}
}

func (m *collector) AddCommit()  { m.commits.Add(1) }
func (m *collector) AddTrash()   { m.trashes.Add(1) }
func (m *collector) AddUndo()    { m.undos.Add(1) }
func (m *collector) AddRestart() { m.restarts.Add(1) }
func (m *collector) AddAttack()  { m.attacks.Add(1) }
func (m *collector) AddCapture() { m.captures.Add(1) }
func (m *collector) AddBuild()   { m.builds.Add(1) }

func (m *collector) Complete() TurnMetric {
	return TurnMetric{
		Day:       m.day,
		Team:      m.team,
		StartTime: m.startTime,
		Duration:  time.Since(m.startTime),
		Commits:   int(m.commits.Load()),
		Trashes:   int(m.trashes.Load()),
		Undos:     int(m.undos.Load()),
		Restarts:  int(m.restarts.Load()),
		Attacks:   int(m.attacks.Load()),
		Captures:  int(m.captures.Load()),
		Builds:    int(m.builds.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(day, team int)  {}
func (m *dummyCollector) AddCommit()           {}
func (m *dummyCollector) AddTrash()            {}
func (m *dummyCollector) AddUndo()             {}
func (m *dummyCollector) AddRestart()          {}
func (m *dummyCollector) AddAttack()           {}
func (m *dummyCollector) AddCapture()          {}
func (m *dummyCollector) AddBuild()            {}
func (m *dummyCollector) Complete() TurnMetric { return TurnMetric{} }
