package i18n

import "errors"

var ErrInvalidFile = errors.New("i18n: invalid translation file")
