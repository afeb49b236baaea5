/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package epid

import "go.uber.org/zap"

// Logger is satisfied by *zap.SugaredLogger.
type Logger interface {
	Debugf(format string, a ...interface{})
	Infof(format string, a ...interface{})
	Warnf(format string, a ...interface{})
	Errorf(format string, a ...interface{})
}

var nopLogger Logger = zap.NewNop().Sugar()

func loggerOrNop(l Logger) Logger {
	if l == nil {
		return nopLogger
	}
	return l
}
