// Package provider abstracts the language model call: prompt text in,
// response text out. No structured-output contract is enforced here;
// downstream parsing must tolerate arbitrary prose.
package provider

import "context"

type ModelClient interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}
