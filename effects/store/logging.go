package store

import (
	"fmt"
	"time"

	"github.com/on-the-ground/effect_ive_go/effects/log"
	"go.uber.org/zap"
)

// WithLogging logs every reducer run at debug level: the message type and
// how long the reducer took. A panicking reducer is logged at error level
// and the panic is re-raised.
func WithLogging[S, M any](logger *zap.Logger) Enhancer[S, M] {
	logger = log.OrNop(logger)
	return func(next Creator[S, M]) Creator[S, M] {
		return func(reducer Reducer[S, M], initial S, enhancers ...Enhancer[S, M]) Store[S, M] {
			logged := func(state S, msg M) S {
				start := time.Now()
				defer func() {
					if r := recover(); r != nil {
						logger.Error("reducer panicked",
							zap.String("msg", fmt.Sprintf("%T", msg)),
							zap.Any("error", r),
						)
						panic(r)
					}
				}()

				nextState := reducer(state, msg)
				logger.Debug("dispatched",
					zap.String("msg", fmt.Sprintf("%T", msg)),
					zap.Duration("took", time.Since(start)),
				)
				return nextState
			}
			return next(logged, initial, enhancers...)
		}
	}
}
