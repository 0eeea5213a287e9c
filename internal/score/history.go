package score

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNoHistory = errors.New("no scores recorded for track")

const schema = `
create table if not exists scores
  (
	  id integer not null primary key,
	  session text not null,
	  sum text not null,
	  name text not null default '',
	  played_at datetime not null,
	  score integer not null,
	  correct integer not null,
	  missed integer not null,
	  wrong integer not null,
	  note_accuracy real not null,
	  beat_accuracy real not null,
	  inputs blob,
	  instrument integer
  );
create index if not exists scores_sum on scores(sum);
`

// Databases created before the instrument override lack its column
const addInstrument = `alter table scores add column instrument integer`

// History keeps finished sessions in SQLite, keyed by track hash.
type History struct {
	db *sql.DB
}

var _ Store = (*History)(nil)

// InputsCompact holds the inputs of one key. The order fields keep each
// event's position in the session, so events on different keys at the same
// time replay in the order they arrived. Records written without them fall
// back to time order.
type InputsCompact struct {
	Pitch        game.PitchClass
	Presses      []time.Duration
	Releases     []time.Duration
	PressOrder   []int `json:",omitempty"`
	ReleaseOrder []int `json:",omitempty"`
}

func (c InputsCompact) ordered() bool {
	return len(c.PressOrder) == len(c.Presses) && len(c.ReleaseOrder) == len(c.Releases)
}

func compactInputs(inputs []game.KeyEvent) []InputsCompact {
	var byPitch [game.NPitch]*InputsCompact
	for i, in := range inputs {
		if !in.Pitch.Valid() {
			continue
		}
		c := byPitch[in.Pitch]
		if nil == c {
			c = &InputsCompact{
				Pitch:        in.Pitch,
				Presses:      []time.Duration{},
				Releases:     []time.Duration{},
				PressOrder:   []int{},
				ReleaseOrder: []int{},
			}
			byPitch[in.Pitch] = c
		}
		if in.Pressed {
			c.Presses = append(c.Presses, in.Time)
			c.PressOrder = append(c.PressOrder, i)
		} else {
			c.Releases = append(c.Releases, in.Time)
			c.ReleaseOrder = append(c.ReleaseOrder, i)
		}
	}
	ins := []InputsCompact{}
	for _, c := range byPitch {
		if nil != c {
			ins = append(ins, *c)
		}
	}
	return ins
}

func uncompactInputs(inputs []InputsCompact) []game.KeyEvent {
	for _, c := range inputs {
		if !c.ordered() {
			return uncompactByTime(inputs)
		}
	}

	type indexed struct {
		order int
		ev    game.KeyEvent
	}
	all := []indexed{}
	for _, c := range inputs {
		for i, at := range c.Presses {
			all = append(all, indexed{c.PressOrder[i], game.Press(c.Pitch, at)})
		}
		for i, at := range c.Releases {
			all = append(all, indexed{c.ReleaseOrder[i], game.Release(c.Pitch, at)})
		}
	}
	sort.SliceStable(all, func(a, b int) bool {
		return all[a].order < all[b].order
	})
	ins := make([]game.KeyEvent, len(all))
	for i, in := range all {
		ins[i] = in.ev
	}
	return ins
}

// uncompactByTime rebuilds a time ordered stream. For one key, a release at
// the same time as a press goes first only when a hold is open. Events on
// different keys at the same time come out in pitch order.
func uncompactByTime(inputs []InputsCompact) []game.KeyEvent {
	ins := []game.KeyEvent{}
	for _, c := range inputs {
		i, j := 0, 0
		for i < len(c.Presses) || j < len(c.Releases) {
			takeRelease := false
			switch {
			case i == len(c.Presses):
				takeRelease = true
			case j == len(c.Releases):
				takeRelease = false
			case c.Releases[j] < c.Presses[i]:
				takeRelease = true
			case c.Releases[j] == c.Presses[i]:
				takeRelease = i > j
			}
			if takeRelease {
				ins = append(ins, game.Release(c.Pitch, c.Releases[j]))
				j++
			} else {
				ins = append(ins, game.Press(c.Pitch, c.Presses[i]))
				i++
			}
		}
	}
	sort.SliceStable(ins, func(a, b int) bool {
		return ins[a].Time < ins[b].Time
	})
	return ins
}

// OpenHistory opens (or creates) the score database.
func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("unable to open score database: %w", err)
	}
	if err := db.Ping(); nil != err {
		db.Close()
		return nil, fmt.Errorf("unable to open score database: %w", err)
	}
	if _, err := db.Exec(schema); nil != err {
		db.Close()
		return nil, fmt.Errorf("unable to create score table: %w", err)
	}
	if _, err := db.Exec(addInstrument); nil != err && !strings.Contains(err.Error(), "duplicate column") {
		db.Close()
		return nil, fmt.Errorf("unable to update score table: %w", err)
	}
	return &History{db: db}, nil
}

func (s *History) Close() error {
	if nil == s.db {
		return nil
	}
	return s.db.Close()
}

func (s *History) Save(r *Record) error {
	data, err := json.Marshal(compactInputs(r.Inputs))
	if nil != err {
		return fmt.Errorf("unable to marshal inputs: %w", err)
	}
	var instrument sql.NullInt64
	if nil != r.Override {
		instrument = sql.NullInt64{Int64: int64(*r.Override), Valid: true}
	}
	res, err := s.db.Exec(`insert into scores
		(session, sum, name, played_at, score, correct, missed, wrong, note_accuracy, beat_accuracy, inputs, instrument)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Session, r.TrackHash, r.TrackName, r.PlayedAt.UTC(),
		r.Score, r.Correct, r.Missed, r.Wrong, r.NoteAccuracy, r.BeatAccuracy, data, instrument)
	if nil != err {
		return fmt.Errorf("unable to save score: %w", err)
	}
	if id, err := res.LastInsertId(); nil == err {
		r.ID = id
	}
	return nil
}

const selectRecord = `select id, session, sum, name, played_at, score, correct, missed, wrong,
	note_accuracy, beat_accuracy, inputs, instrument from scores`

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()
	records := []Record{}
	for rows.Next() {
		var r Record
		var inputs []byte
		var instrument sql.NullInt64
		if err := rows.Scan(&r.ID, &r.Session, &r.TrackHash, &r.TrackName, &r.PlayedAt,
			&r.Score, &r.Correct, &r.Missed, &r.Wrong, &r.NoteAccuracy, &r.BeatAccuracy, &inputs, &instrument); nil != err {
			return nil, fmt.Errorf("unable to read score: %w", err)
		}
		if instrument.Valid {
			i := game.Instrument(instrument.Int64)
			r.Override = &i
		}
		var ns []InputsCompact
		if err := json.Unmarshal(inputs, &ns); nil != err {
			log.Println("unable to unmarshal input history", r.ID, err)
		} else {
			r.Inputs = uncompactInputs(ns)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Load returns every record of a track, newest first.
func (s *History) Load(hash string) ([]Record, error) {
	rows, err := s.db.Query(selectRecord+" where sum = ? order by played_at desc, id desc", hash)
	if nil != err {
		return nil, fmt.Errorf("unable to load scores: %w", err)
	}
	return scanRecords(rows)
}

// Best returns the record with the highest note accuracy, using beat
// accuracy and then age to break ties.
func (s *History) Best(hash string) (*Record, error) {
	rows, err := s.db.Query(selectRecord+
		" where sum = ? order by note_accuracy desc, beat_accuracy desc, id asc limit 1", hash)
	if nil != err {
		return nil, fmt.Errorf("unable to load scores: %w", err)
	}
	records, err := scanRecords(rows)
	if nil != err {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoHistory
	}
	return &records[0], nil
}
