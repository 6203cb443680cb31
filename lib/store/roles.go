package store

import (
	"sort"
)

// --------------------------------------------------------------------------
// Roles
// --------------------------------------------------------------------------

// Role is the replica role a command must be sent to.
type Role uint8

const (
	RolePrimary Role = iota + 1 // the single writable node
	RoleReplica                 // a read-only copy
)

func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleReplica:
		return "replica"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Commands
// --------------------------------------------------------------------------

// Command names an operation exposed by the client facade.
type Command string

const (
	// strings
	CmdSet      Command = "set"
	CmdGet      Command = "get"
	CmdIncr     Command = "incr"
	CmdDecr     Command = "decr"
	CmdAppend   Command = "append"
	CmdGetRange Command = "getrange"
	CmdSetRange Command = "setrange"
	CmdStrLen   Command = "strlen"
	CmdMGet     Command = "mget"
	CmdMSet     Command = "mset"

	// keys and server
	CmdDelete    Command = "delete"
	CmdDeleteRaw Command = "delete_raw"
	CmdExists    Command = "exists"
	CmdKeys      Command = "keys"
	CmdScan      Command = "scan"
	CmdScanIter  Command = "scan_iter"
	CmdExpire    Command = "expire"
	CmdExpireAt  Command = "expireat"
	CmdTTL       Command = "ttl"
	CmdPTTL      Command = "pttl"
	CmdPersist   Command = "persist"
	CmdRename    Command = "rename"
	CmdType      Command = "type"
	CmdFlushDB   Command = "flushdb"
	CmdFlushAll  Command = "flushall"
	CmdPing      Command = "ping"

	// lists
	CmdLPush  Command = "lpush"
	CmdRPush  Command = "rpush"
	CmdLPop   Command = "lpop"
	CmdRPop   Command = "rpop"
	CmdLRange Command = "lrange"
	CmdLLen   Command = "llen"
	CmdLIndex Command = "lindex"
	CmdLSet   Command = "lset"
	CmdLRem   Command = "lrem"
	CmdLTrim  Command = "ltrim"

	// hashes
	CmdHSet         Command = "hset"
	CmdHGet         Command = "hget"
	CmdHGetAll      Command = "hgetall"
	CmdHDel         Command = "hdel"
	CmdHKeys        Command = "hkeys"
	CmdHVals        Command = "hvals"
	CmdHLen         Command = "hlen"
	CmdHExists      Command = "hexists"
	CmdHIncrBy      Command = "hincrby"
	CmdHIncrByFloat Command = "hincrbyfloat"
	CmdHMGet        Command = "hmget"
	CmdHSetNX       Command = "hsetnx"
	CmdHStrLen      Command = "hstrlen"
	CmdHRandField   Command = "hrandfield"
	CmdHScan        Command = "hscan"
	CmdHScanIter    Command = "hscan_iter"

	// sets
	CmdSAdd        Command = "sadd"
	CmdSRem        Command = "srem"
	CmdSMembers    Command = "smembers"
	CmdSIsMember   Command = "sismember"
	CmdSMove       Command = "smove"
	CmdSCard       Command = "scard"
	CmdSDiff       Command = "sdiff"
	CmdSInter      Command = "sinter"
	CmdSUnion      Command = "sunion"
	CmdSPop        Command = "spop"
	CmdSRandMember Command = "srandmember"
	CmdSScan       Command = "sscan"
	CmdSScanIter   Command = "sscan_iter"

	// sorted sets
	CmdZAdd             Command = "zadd"
	CmdZRem             Command = "zrem"
	CmdZRange           Command = "zrange"
	CmdZRevRange        Command = "zrevrange"
	CmdZRangeByScore    Command = "zrangebyscore"
	CmdZRevRangeByScore Command = "zrevrangebyscore"
	CmdZRangeByLex      Command = "zrangebylex"
	CmdZCard            Command = "zcard"
	CmdZCount           Command = "zcount"
	CmdZRank            Command = "zrank"
	CmdZRevRank         Command = "zrevrank"
	CmdZScore           Command = "zscore"
	CmdZIncrBy          Command = "zincrby"
	CmdZPopMin          Command = "zpopmin"
	CmdZPopMax          Command = "zpopmax"
	CmdZRemRangeByRank  Command = "zremrangebyrank"
	CmdZRemRangeByScore Command = "zremrangebyscore"
	CmdZScan            Command = "zscan"
	CmdZScanIter        Command = "zscan_iter"

	// batches
	CmdWritePipeline Command = "write_pipeline"
	CmdReadPipeline  Command = "read_pipeline"
	CmdTransaction   Command = "transaction"
)

// roles is the static routing table. Every exposed command has exactly one
// role and the role never depends on the arguments of a call.
var roles = map[Command]Role{
	CmdSet:      RolePrimary,
	CmdGet:      RoleReplica,
	CmdIncr:     RolePrimary,
	CmdDecr:     RolePrimary,
	CmdAppend:   RolePrimary,
	CmdGetRange: RoleReplica,
	CmdSetRange: RolePrimary,
	CmdStrLen:   RoleReplica,
	CmdMGet:     RoleReplica,
	CmdMSet:     RolePrimary,

	CmdDelete:    RolePrimary,
	CmdDeleteRaw: RolePrimary,
	CmdExists:    RoleReplica,
	CmdKeys:      RoleReplica,
	CmdScan:      RoleReplica,
	CmdScanIter:  RoleReplica,
	CmdExpire:    RolePrimary,
	CmdExpireAt:  RolePrimary,
	CmdTTL:       RoleReplica,
	CmdPTTL:      RoleReplica,
	CmdPersist:   RolePrimary,
	CmdRename:    RolePrimary,
	CmdType:      RoleReplica,
	CmdFlushDB:   RolePrimary,
	CmdFlushAll:  RolePrimary,
	CmdPing:      RolePrimary,

	CmdLPush:  RolePrimary,
	CmdRPush:  RolePrimary,
	CmdLPop:   RolePrimary,
	CmdRPop:   RolePrimary,
	CmdLRange: RoleReplica,
	CmdLLen:   RoleReplica,
	CmdLIndex: RoleReplica,
	CmdLSet:   RolePrimary,
	CmdLRem:   RolePrimary,
	CmdLTrim:  RolePrimary,

	CmdHSet:         RolePrimary,
	CmdHGet:         RoleReplica,
	CmdHGetAll:      RoleReplica,
	CmdHDel:         RolePrimary,
	CmdHKeys:        RoleReplica,
	CmdHVals:        RoleReplica,
	CmdHLen:         RoleReplica,
	CmdHExists:      RoleReplica,
	CmdHIncrBy:      RolePrimary,
	CmdHIncrByFloat: RolePrimary,
	CmdHMGet:        RoleReplica,
	CmdHSetNX:       RolePrimary,
	CmdHStrLen:      RoleReplica,
	CmdHRandField:   RoleReplica,
	CmdHScan:        RoleReplica,
	CmdHScanIter:    RoleReplica,

	CmdSAdd:        RolePrimary,
	CmdSRem:        RolePrimary,
	CmdSMembers:    RoleReplica,
	CmdSIsMember:   RoleReplica,
	CmdSMove:       RolePrimary,
	CmdSCard:       RoleReplica,
	CmdSDiff:       RoleReplica,
	CmdSInter:      RoleReplica,
	CmdSUnion:      RoleReplica,
	CmdSPop:        RolePrimary,
	CmdSRandMember: RoleReplica,
	CmdSScan:       RoleReplica,
	CmdSScanIter:   RoleReplica,

	CmdZAdd:             RolePrimary,
	CmdZRem:             RolePrimary,
	CmdZRange:           RoleReplica,
	CmdZRevRange:        RoleReplica,
	CmdZRangeByScore:    RoleReplica,
	CmdZRevRangeByScore: RoleReplica,
	CmdZRangeByLex:      RoleReplica,
	CmdZCard:            RoleReplica,
	CmdZCount:           RoleReplica,
	CmdZRank:            RoleReplica,
	CmdZRevRank:         RoleReplica,
	CmdZScore:           RoleReplica,
	CmdZIncrBy:          RolePrimary,
	CmdZPopMin:          RolePrimary,
	CmdZPopMax:          RolePrimary,
	CmdZRemRangeByRank:  RolePrimary,
	CmdZRemRangeByScore: RolePrimary,
	CmdZScan:            RoleReplica,
	CmdZScanIter:        RoleReplica,

	CmdWritePipeline: RolePrimary,
	CmdReadPipeline:  RoleReplica,
	CmdTransaction:   RolePrimary,
}

// RoleOf returns the role a command is routed to. The boolean is false for
// commands that are not part of the table.
func RoleOf(cmd Command) (Role, bool) {
	r, ok := roles[cmd]
	return r, ok
}

// Commands returns all routed commands in lexical order.
func Commands() []Command {
	cmds := make([]Command, 0, len(roles))
	for c := range roles {
		cmds = append(cmds, c)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i] < cmds[j] })
	return cmds
}
