package subscription

import "errors"

// ErrSelfSubscribe — подписка на самого себя, запрещена всегда.
var ErrSelfSubscribe = errors.New("self subscription")
