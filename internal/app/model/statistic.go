package model

import (
	"sync"
)

type UpdateInfo struct {
	Mu      *sync.Mutex
	Counter int
}

func NewUpdateInfo(counter int) *UpdateInfo {
	return &UpdateInfo{Mu: new(sync.Mutex), Counter: counter}
}

// Inc increments the counter and returns the new value.
func (u *UpdateInfo) Inc() int {
	u.Mu.Lock()
	defer u.Mu.Unlock()

	u.Counter++
	return u.Counter
}

func (u *UpdateInfo) Value() int {
	u.Mu.Lock()
	defer u.Mu.Unlock()

	return u.Counter
}
