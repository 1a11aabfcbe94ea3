//go:build !sqlite
// +build !sqlite

package taskstore

import (
	"errors"

	logx "github.com/duantianjun/qtshut/pkg/logx"
)

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	_ = cfg
	_ = log
	return nil, errors.New("sqlite task store not built: build with -tags sqlite")
}
