package sink

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// CheckpointFile은 출력 디렉터리의 완료 로그 이름입니다.
const CheckpointFile = "completed"

// Checkpoint는 처리를 마친 파일 이름을 한 줄씩 기록하는 추가 전용 로그입니다.
// 시작할 때 한 번 읽어 메모리에 두고, 이후 기록은 파일과 메모리에 같이 반영합니다.
type Checkpoint struct {
	mu   sync.Mutex
	path string
	done map[string]struct{}
}

// OpenCheckpoint는 dir/completed를 읽습니다. 파일이 없으면 빈 로그로 시작합니다.
func OpenCheckpoint(dir string) (*Checkpoint, error) {
	cp := &Checkpoint{
		path: filepath.Join(dir, CheckpointFile),
		done: make(map[string]struct{}),
	}

	f, err := os.Open(cp.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cp, nil
		}
		return nil, errors.Wrapf(err, "open checkpoint %s", cp.path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			cp.done[name] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read checkpoint %s", cp.path)
	}
	return cp, nil
}

// Completed는 이전에 완료로 기록된 파일인지 확인합니다.
func (c *Checkpoint) Completed(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.done[name]
	return ok
}

// Mark는 파일을 완료로 기록합니다. 이미 기록된 이름은 다시 쓰지 않습니다.
func (c *Checkpoint) Mark(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.done[name]; ok {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.path), os.ModePerm); err != nil {
		return errors.Wrapf(err, "create dir for %s", c.path)
	}
	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "open checkpoint %s", c.path)
	}
	defer f.Close()

	if _, err := f.WriteString(name + "\n"); err != nil {
		return errors.Wrapf(err, "append checkpoint %s", c.path)
	}
	c.done[name] = struct{}{}
	return nil
}

// Len은 완료로 기록된 파일 수입니다.
func (c *Checkpoint) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.done)
}
