// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package netlink talks to the Linux kernel's w1 (1-wire) subsystem over
// its NETLINK_CONNECTOR interface, so a Bus on this transport delegates
// reset/search/read/write to the kernel's own w1 master driver instead
// of bit-banging the protocol in this process.
package netlink

import "encoding/binary"

// Connector message group this package addresses, from
// include/linux/connector.h.
const (
	cnIdxW1 = 0x3
	cnValW1 = 0x1
)

// w1 netlink message types, from include/linux/w1-netlink.h.
const (
	w1SlaveAdd     = 0
	w1SlaveRemove  = 1
	w1MasterAdd    = 2
	w1MasterRemove = 3
	w1MasterCmd    = 4
	w1SlaveCmd     = 5
	w1ListMasters  = 6
)

// w1 netlink sub-commands, carried inside a w1MasterCmd/w1SlaveCmd
// message's command list.
const (
	w1CmdRead        = 0
	w1CmdWrite       = 1
	w1CmdSearch      = 2
	w1CmdAlarmSearch = 3
	w1CmdTouch       = 4
	w1CmdReset       = 5
	w1CmdSlaveAdd    = 6
	w1CmdSlaveRemove = 7
	w1CmdListSlaves  = 8
)

// nlmsgHeaderLen is the fixed size of a struct nlmsghdr: len, type,
// flags, seq, pid, all uint32/uint16 per netlink(7).
const nlmsgHeaderLen = 16

// cnMsgHeaderLen is the fixed size of a struct cn_msg (minus its
// trailing variable-length data): id.idx, id.val, seq, ack, len, flags.
const cnMsgHeaderLen = 20

// w1MsgHeaderLen is the fixed size of a struct w1_netlink_msg header:
// type, status, len, plus a 4-byte id/reserved union padded to align
// the trailing data — the kernel defines this union as 8 bytes wide.
const w1MsgHeaderLen = 12

// w1CmdHeaderLen is the fixed size of a struct w1_netlink_cmd header:
// cmd, res, len.
const w1CmdHeaderLen = 4

var nativeEndian = binary.LittleEndian

// putNlmsghdr writes a netlink message header for a payload of
// msgLen bytes (the cn_msg and everything nested inside it) into buf,
// which must be at least nlmsgHeaderLen bytes.
func putNlmsghdr(buf []byte, msgLen int, seq, pid uint32) {
	nativeEndian.PutUint32(buf[0:4], uint32(nlmsgHeaderLen+msgLen))
	nativeEndian.PutUint16(buf[4:6], 0xFFFF) // NLMSG_MIN_TYPE, arbitrary for connector
	nativeEndian.PutUint16(buf[6:8], 0)
	nativeEndian.PutUint32(buf[8:12], seq)
	nativeEndian.PutUint32(buf[12:16], pid)
}

// putCnMsgHeader writes a cn_msg header addressed to the w1 connector
// group for a payload of dataLen bytes into buf, which must be at
// least cnMsgHeaderLen bytes.
func putCnMsgHeader(buf []byte, dataLen int, seq, ack uint32) {
	nativeEndian.PutUint32(buf[0:4], cnIdxW1)
	nativeEndian.PutUint32(buf[4:8], cnValW1)
	nativeEndian.PutUint32(buf[8:12], seq)
	nativeEndian.PutUint32(buf[12:16], ack)
	nativeEndian.PutUint16(buf[16:18], uint16(dataLen))
	nativeEndian.PutUint16(buf[18:20], 0)
}

// putW1MsgHeader writes a w1_netlink_msg header into buf (at least
// w1MsgHeaderLen bytes): msgType is one of the w1Master*/w1Slave*
// constants, id addresses a specific master (0 for "the only/default
// master" when talking W1_LIST_MASTERS).
func putW1MsgHeader(buf []byte, msgType byte, dataLen int, id uint32) {
	buf[0] = msgType
	buf[1] = 0 // status, always 0 on a request
	nativeEndian.PutUint16(buf[2:4], uint16(dataLen))
	nativeEndian.PutUint32(buf[4:8], id)
	nativeEndian.PutUint32(buf[8:12], 0)
}

// putW1CmdHeader writes a w1_netlink_cmd header into buf (at least
// w1CmdHeaderLen bytes).
func putW1CmdHeader(buf []byte, cmd byte, dataLen int) {
	buf[0] = cmd
	buf[1] = 0
	nativeEndian.PutUint16(buf[2:4], uint16(dataLen))
}

// buildCommand assembles one full netlink packet carrying a single w1
// command (read/write/search/touch/reset) addressed to master id,
// wrapping payload in a w1_netlink_cmd, that in a w1_netlink_msg, that
// in a cn_msg, that in an nlmsghdr.
func buildCommand(msgType byte, id uint32, cmd byte, payload []byte, seq uint32) []byte {
	cmdLen := w1CmdHeaderLen + len(payload)
	msgLen := w1MsgHeaderLen + cmdLen
	cnLen := cnMsgHeaderLen + msgLen
	buf := make([]byte, nlmsgHeaderLen+cnLen)

	putNlmsghdr(buf, cnLen, seq, 0)
	putCnMsgHeader(buf[nlmsgHeaderLen:], msgLen, seq, 0)
	msgOff := nlmsgHeaderLen + cnMsgHeaderLen
	putW1MsgHeader(buf[msgOff:], msgType, cmdLen, id)
	cmdOff := msgOff + w1MsgHeaderLen
	putW1CmdHeader(buf[cmdOff:], cmd, len(payload))
	copy(buf[cmdOff+w1CmdHeaderLen:], payload)
	return buf
}

// parsedReply is the decoded body of one w1 netlink reply: the master
// id it came from, the w1 message type, and its raw command payload
// (the bytes following the w1_netlink_cmd header, if any).
type parsedReply struct {
	masterID uint32
	msgType  byte
	status   byte
	cmd      byte
	payload  []byte
}

// parseReply decodes a single netlink packet (as returned by one
// connSocket.recv call) down to its innermost command payload. It
// expects exactly the framing buildCommand produces; replies with a
// shorter encoding (no nested w1_netlink_cmd, e.g. plain
// W1_LIST_MASTERS acks) are reported with a zero cmd and the message's
// own payload.
func parseReply(buf []byte) (parsedReply, bool) {
	if len(buf) < nlmsgHeaderLen+cnMsgHeaderLen+w1MsgHeaderLen {
		return parsedReply{}, false
	}
	msgOff := nlmsgHeaderLen + cnMsgHeaderLen
	msgType := buf[msgOff]
	status := buf[msgOff+1]
	msgDataLen := int(nativeEndian.Uint16(buf[msgOff+2 : msgOff+4]))
	id := nativeEndian.Uint32(buf[msgOff+4 : msgOff+8])
	body := buf[msgOff+w1MsgHeaderLen:]
	if msgDataLen > len(body) {
		msgDataLen = len(body)
	}
	body = body[:msgDataLen]

	if len(body) < w1CmdHeaderLen {
		return parsedReply{masterID: id, msgType: msgType, status: status, payload: body}, true
	}
	cmd := body[0]
	cmdDataLen := int(nativeEndian.Uint16(body[2:4]))
	payload := body[w1CmdHeaderLen:]
	if cmdDataLen > len(payload) {
		cmdDataLen = len(payload)
	}
	return parsedReply{masterID: id, msgType: msgType, status: status, cmd: cmd, payload: payload[:cmdDataLen]}, true
}
