// Package integrations provides the HTTP plumbing shared by spm's remote
// clients.
//
// # Overview
//
// The [Client] type wraps net/http with:
//   - default headers (User-Agent, Accept, Authorization) on every request
//   - status classification into [ErrNotFound] and [ErrNetwork]
//   - JSON decoding that reports failures as [ErrDecode]
//   - an optional read-through cache via [Client.Cached]
//   - request/response events through the observability HTTP hooks
//
// Requests are never retried: a flaky network call fails the command.
//
// The [github] subpackage builds on Client to resolve release tags,
// fetch release manifests, and download release assets.
//
// [github]: github.com/matzehuels/spm/pkg/integrations/github
package integrations
