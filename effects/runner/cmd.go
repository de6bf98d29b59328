package runner

import "context"

// Cmd is a self-describing task: running it yields exactly one message.
type Cmd[M any] func(context.Context) M

// Perform builds a Cmd from a fallible computation. The outcome is mapped
// to a message by onSuccess or onError, so the command never fails.
func Perform[R, M any](
	task func(context.Context) (R, error),
	onSuccess func(R) M,
	onError func(error) M,
) Cmd[M] {
	return func(ctx context.Context) M {
		res, err := task(ctx)
		if err != nil {
			return onError(err)
		}
		return onSuccess(res)
	}
}

// RunCmd is the Runner for Cmd tasks.
func RunCmd[M any]() Runner[Cmd[M], M] {
	return Func(
		func(ctx context.Context, cmd Cmd[M]) (M, error) {
			return cmd(ctx), nil
		},
		func(_ Cmd[M], err error) M {
			panic(err) // unreachable: Cmd never fails
		},
	)
}
