package percolator

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// QueryLog is the append-only command log backing one registry replica.
// Registry mutations are appended as JSON commands and replayed on open,
// which gives registered queries the same durability path as ordinary
// writes.
type QueryLog struct {
	filename string
	file     *os.File
	mu       sync.Mutex
}

// OpenQueryLog replays filename through apply, then reopens it for append.
func OpenQueryLog(filename string, apply func(command *Command) error) (*QueryLog, error) {

	f, err := os.OpenFile(filename, os.O_RDONLY|os.O_CREATE, 0666)
	if err != nil {
		return nil, fmt.Errorf("open log for read: %w", err)
	}

	j := json.NewDecoder(f)
	for {
		command := &Command{}
		err := j.Decode(&command)
		if err == io.EOF {
			break
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("decode command: %w", err)
		}

		err = apply(command)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("apply command '%s': %w", command.Name, err)
		}
	}
	f.Close()

	log := &QueryLog{
		filename: filename,
	}

	log.file, err = os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("open log for write: %w", err)
	}

	return log, nil
}

func (l *QueryLog) Append(name string, payload interface{}) error {

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("json encode payload: %w", err)
	}

	command := &Command{
		Name:      name,
		Uuid:      uuid.New().String(),
		Timestamp: time.Now().UnixNano(),
		Payload:   data,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("log is closed")
	}

	err = json.NewEncoder(l.file).Encode(command)
	if err != nil {
		return fmt.Errorf("json encode command: %w", err)
	}

	return nil
}

func (l *QueryLog) Filename() string {
	return l.filename
}

func (l *QueryLog) Close() error {

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	err := l.file.Close()
	l.file = nil
	return err
}

func (l *QueryLog) Remove() error {
	return os.Remove(l.filename)
}
