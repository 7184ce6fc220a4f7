// Package frame provides L0 protocol support.
package frame

// L0 protocol is streamed from the MC9S08QE128 acquisition firmware to
// the host over a serial port, one fixed 4-byte frame per sample period.
//
// Each frame carries two 12-bit analog samples and two digital samples.
// Bit 7 of every byte is a marker: 0 on the first byte of a frame and 1
// on the remaining three. Bit 6 is the digital sample of that byte's
// channel, bits 0-5 are analog magnitude:
//
//	byte0: 0 D1 A1[11:6]
//	byte1: 1 D2 A1[5:0]
//	byte2: 1 D3 A2[11:6]
//	byte3: 1 D4 A2[5:0]
//
// There is no delimiter, checksum or terminator. Alignment is recovered
// only by scanning for a byte with marker 0. This works as long as the
// stream is otherwise well-formed periodic data; bytes lost or inserted
// while scanning can leave the receiver misaligned for a few more frames.
//
// Producer: L0 firmware
// Consumer: host
