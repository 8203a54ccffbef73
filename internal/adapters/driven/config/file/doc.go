// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.lumen.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable generation prompts
//   - Watcher: fsnotify-based change notification for both
package file
