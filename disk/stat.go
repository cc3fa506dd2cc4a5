package disk

import (
	"fmt"
	"time"

	times "gopkg.in/djherbis/times.v1"
)

// FileTimes reports the OS-level timestamps of a backing file, independent
// of anything recorded in a mounted filesystem's own superblock. Birth time
// is only populated on platforms/filesystems that track it; HasBirthTime
// reports whether it is meaningful.
type FileTimes struct {
	AccessTime  time.Time
	ModTime     time.Time
	ChangeTime  time.Time
	BirthTime   time.Time
	HasBirthTime bool
}

// BackingFileTimes stats path and returns its access/modification/change
// (and, where available, birth) times. Useful for tooling that wants to
// report when a virtual disk was created or last touched without mounting
// it.
func BackingFileTimes(path string) (FileTimes, error) {
	t, err := times.Stat(path)
	if err != nil {
		return FileTimes{}, fmt.Errorf("disk: could not stat times for %s: %v", path, err)
	}
	ft := FileTimes{
		AccessTime: t.AccessTime(),
		ModTime:    t.ModTime(),
	}
	if t.HasChangeTime() {
		ft.ChangeTime = t.ChangeTime()
	}
	if t.HasBirthTime() {
		ft.BirthTime = t.BirthTime()
		ft.HasBirthTime = true
	}
	return ft, nil
}
