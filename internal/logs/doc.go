// Package logs reads and follows the debtwatch log file for the CLI's logs
// command. It tracks a byte offset between reads so follow mode only emits
// lines appended since the previous poll.
package logs
