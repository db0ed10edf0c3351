package session

import "errors"

var ErrAtCapacity = errors.New("call limit reached")
