// Package ledger records attendance events, at most one per person per
// calendar day. Each day lives in its own CSV partition so retention and
// export stay trivial for the surrounding tooling.
package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// DateFormat is the partition key layout; lexicographic order equals
	// chronological order.
	DateFormat = "2006-01-02"
	// TimeFormat is the 24-hour clock layout stored in records.
	TimeFormat = "15:04:05"
)

// partitionHeader is the CSV header row of every partition file.
var partitionHeader = []string{"Name", "Date", "Time"}

// datePattern matches valid partition keys. Anything else is rejected
// before it can touch the filesystem.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Record is a single immutable attendance entry.
type Record struct {
	Name string `json:"name"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// MarkResult reports the outcome of a mark attempt. Exactly one of the
// two shapes occurs: accepted with the newly recorded time, or rejected
// with the previously recorded time. A storage failure degrades to
// rejected with both times empty.
type MarkResult struct {
	Accepted     bool   `json:"accepted"`
	Time         string `json:"time,omitempty"`
	ExistingTime string `json:"existing_time,omitempty"`
}

// Ledger persists attendance partitions under a single directory.
// Marking is a read-modify-write over the whole partition, so each date
// gets its own lock; concurrent marks for the same day serialize instead
// of losing updates.
type Ledger struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a ledger rooted at dir. The directory is created lazily on
// the first successful mark.
func New(dir string) *Ledger {
	return &Ledger{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding one date partition.
func (l *Ledger) lockFor(date string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[date]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[date] = lock
	}
	return lock
}

func (l *Ledger) partitionPath(date string) string {
	return filepath.Join(l.dir, date+".csv")
}

// Mark records attendance for name at the given moment. First writer wins
// within a day: if the name is already present in the day's partition the
// call is a no-op reporting the existing time. Storage failures are logged
// and degrade to a rejected result; they never propagate.
func (l *Ledger) Mark(name string, now time.Time) MarkResult {
	date := now.Format(DateFormat)

	lock := l.lockFor(date)
	lock.Lock()
	defer lock.Unlock()

	records := l.readPartition(date)
	for _, rec := range records {
		if rec.Name == name {
			return MarkResult{Accepted: false, ExistingTime: rec.Time}
		}
	}

	entry := Record{Name: name, Date: date, Time: now.Format(TimeFormat)}
	records = append(records, entry)

	if err := l.writePartition(date, records); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"name": name,
			"date": date,
		}).Error("failed to persist attendance partition")
		return MarkResult{Accepted: false}
	}

	return MarkResult{Accepted: true, Time: entry.Time}
}

// RecordsFor returns all records of one date partition. A missing or
// unreadable partition degrades to an empty slice with a logged warning,
// never an error.
func (l *Ledger) RecordsFor(date string) []Record {
	if !datePattern.MatchString(date) {
		log.WithField("date", date).Warn("ignoring malformed partition date")
		return nil
	}

	lock := l.lockFor(date)
	lock.Lock()
	defer lock.Unlock()

	return l.readPartition(date)
}

// ListDates returns the dates of all existing partitions, most recent
// first.
func (l *Ledger) ListDates() []string {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warn("failed to list attendance partitions")
		}
		return nil
	}

	var dates []string
	for _, entry := range entries {
		name := entry.Name()
		date, ok := strings.CutSuffix(name, ".csv")
		if !ok || !datePattern.MatchString(date) {
			continue
		}
		dates = append(dates, date)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// RecordsBetween returns the union of all partitions with from <= date <=
// to, most recent date first. Empty bounds mean unbounded.
func (l *Ledger) RecordsBetween(from, to string) []Record {
	var out []Record
	for _, date := range l.ListDates() {
		if from != "" && date < from {
			continue
		}
		if to != "" && date > to {
			continue
		}
		out = append(out, l.RecordsFor(date)...)
	}
	return out
}

// PresentToday reports whether name is already marked in the partition of
// now's date.
func (l *Ledger) PresentToday(name string, now time.Time) bool {
	for _, rec := range l.RecordsFor(now.Format(DateFormat)) {
		if rec.Name == name {
			return true
		}
	}
	return false
}

// CountFor returns how many days name was present in [from, to].
func (l *Ledger) CountFor(name, from, to string) int {
	count := 0
	for _, rec := range l.RecordsBetween(from, to) {
		if rec.Name == name {
			count++
		}
	}
	return count
}

// readPartition loads one partition. Caller holds the date lock. Missing
// files are normal; anything else unreadable is logged and treated as
// empty.
func (l *Ledger) readPartition(date string) []Record {
	f, err := os.Open(l.partitionPath(date))
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).WithField("date", date).Warn("failed to open attendance partition")
		}
		return nil
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		log.WithError(err).WithField("date", date).Warn("failed to parse attendance partition")
		return nil
	}

	var records []Record
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == partitionHeader[0] {
			continue // header row
		}
		if len(row) < 3 {
			continue
		}
		records = append(records, Record{Name: row[0], Date: row[1], Time: row[2]})
	}
	return records
}

// writePartition rewrites one partition atomically via a temp file and
// rename. Caller holds the date lock.
func (l *Ledger) writePartition(date string, records []Record) error {
	if err := os.MkdirAll(l.dir, 0750); err != nil {
		return fmt.Errorf("creating attendance directory: %w", err)
	}

	tmp, err := os.CreateTemp(l.dir, date+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp partition: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	writer := csv.NewWriter(tmp)
	if err := writer.Write(partitionHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("writing partition header: %w", err)
	}
	for _, rec := range records {
		if err := writer.Write([]string{rec.Name, rec.Date, rec.Time}); err != nil {
			tmp.Close()
			return fmt.Errorf("writing partition row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing partition: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp partition: %w", err)
	}

	if err := os.Rename(tmpName, l.partitionPath(date)); err != nil {
		return fmt.Errorf("replacing partition: %w", err)
	}
	return nil
}
