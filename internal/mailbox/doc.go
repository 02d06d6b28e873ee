// Package mailbox provides the primitives the frame loop and the compute
// worker use to hand work to each other.
//
//   - [Queue] is an unbounded FIFO safe for many producers and consumers.
//   - [Sealed] transfers a pointer to exactly one receiver.
//   - [Signal] wakes a single sleeping goroutine without busy-waiting.
package mailbox
