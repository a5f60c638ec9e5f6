// Package mocks provides test doubles shared across packages.
//
// MockClient implements generation.Client. It replays canned chunks or an
// error, or delegates to SendPromptFn, and records every call:
//
//	client := mocks.NewMockClientWithChunks(`[{"term":"Go",`, `"definition":"A language"}]`)
//	store, _ := study.NewStore(client, logger)
//	// ... exercise the store, then:
//	client.CallCount() // 1
//	client.LastPrompt()
package mocks
