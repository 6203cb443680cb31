package client

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/credis/lib/store"
	topotest "github.com/ValentinKolb/credis/lib/topology/testing"
	"github.com/redis/go-redis/v9"
)

// TestSetOptions tests the NX/XX modes, expiry and SetGet
func TestSetOptions(t *testing.T) {
	c, mon := newTestClient(t)
	ctx := context.Background()

	ok, err := c.Set(ctx, "k", "v1", SetOptions{Mode: SetXX})
	if err != nil || ok {
		t.Fatalf("Expected XX on missing key to be skipped, got %v %v", ok, err)
	}
	ok, err = c.Set(ctx, "k", "v1", SetOptions{Mode: SetNX, TTL: time.Minute})
	if err != nil || !ok {
		t.Fatalf("Expected NX on missing key to write, got %v %v", ok, err)
	}
	ok, err = c.Set(ctx, "k", "v2", SetOptions{Mode: SetNX})
	if err != nil || ok {
		t.Fatalf("Expected NX on existing key to be skipped, got %v %v", ok, err)
	}
	if ttl := mon.Server.TTL("app:k"); ttl != time.Minute {
		t.Errorf("Expected TTL of one minute, got %v", ttl)
	}

	old, err := c.SetGet(ctx, "k", "v3", SetOptions{KeepTTL: true})
	if err != nil || old != "v1" {
		t.Fatalf("Expected previous value v1, got %v %v", old, err)
	}
	if ttl := mon.Server.TTL("app:k"); ttl != time.Minute {
		t.Errorf("Expected KeepTTL to keep the expiry, got %v", ttl)
	}
	old, err = c.SetGet(ctx, "fresh", "v", SetOptions{})
	if err != nil || old != nil {
		t.Errorf("Expected no previous value, got %v %v", old, err)
	}
}

// TestGetMissing tests that a missing key is the absent value, not an error
func TestGetMissing(t *testing.T) {
	c, _ := newTestClient(t)
	v, err := c.Get(context.Background(), "nope")
	if err != nil || v != nil {
		t.Errorf("Expected (nil, nil), got (%v, %v)", v, err)
	}
}

// TestRawStringOperations tests the operations that bypass the codec
func TestRawStringOperations(t *testing.T) {
	c, mon := newTestClient(t)
	ctx := context.Background()

	if n, err := c.Incr(ctx, "counter", 5); err != nil || n != 5 {
		t.Fatalf("Incr: expected 5, got %d %v", n, err)
	}
	if n, err := c.Decr(ctx, "counter", 2); err != nil || n != 3 {
		t.Fatalf("Decr: expected 3, got %d %v", n, err)
	}
	if raw, _ := mon.Server.Get("app:counter"); raw != "3" {
		t.Errorf("Expected plain integer in store, got %q", raw)
	}

	if _, err := c.Append(ctx, "text", "hello"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if _, err := c.SetRange(ctx, "text", 0, "J"); err != nil {
		t.Fatalf("SetRange failed: %v", err)
	}
	s, err := c.GetRange(ctx, "text", 0, 2)
	if err != nil || s != "Jel" {
		t.Errorf("GetRange: expected Jel, got %q %v", s, err)
	}
	if n, err := c.StrLen(ctx, "text"); err != nil || n != 5 {
		t.Errorf("StrLen: expected 5, got %d %v", n, err)
	}
}

// TestKeyOperations tests existence, expiry, renaming and deletion
func TestKeyOperations(t *testing.T) {
	c, mon := newTestClient(t)
	ctx := context.Background()

	for _, k := range []string{"a", "b"} {
		if _, err := c.Set(ctx, k, k, SetOptions{}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if n, err := c.Exists(ctx, "a", "b", "c"); err != nil || n != 2 {
		t.Errorf("Exists: expected 2, got %d %v", n, err)
	}
	if typ, err := c.Type(ctx, "a"); err != nil || typ != "string" {
		t.Errorf("Type: expected string, got %q %v", typ, err)
	}

	if ok, err := c.Expire(ctx, "a", time.Minute); err != nil || !ok {
		t.Fatalf("Expire failed: %v %v", ok, err)
	}
	if ttl, err := c.TTL(ctx, "a"); err != nil || ttl != time.Minute {
		t.Errorf("TTL: expected 1m, got %v %v", ttl, err)
	}
	if ttl, err := c.PTTL(ctx, "a"); err != nil || ttl <= 0 {
		t.Errorf("PTTL: expected positive, got %v %v", ttl, err)
	}
	if ok, err := c.Persist(ctx, "a"); err != nil || !ok {
		t.Errorf("Persist failed: %v %v", ok, err)
	}
	if ttl, err := c.TTL(ctx, "a"); err != nil || ttl != -1 {
		t.Errorf("TTL after persist: expected -1, got %v %v", ttl, err)
	}

	if ok, err := c.ExpireAt(ctx, "b", time.Now().Add(time.Hour)); err != nil || !ok {
		t.Fatalf("ExpireAt failed: %v %v", ok, err)
	}
	mon.Server.FastForward(2 * time.Hour)
	if n, err := c.Exists(ctx, "b"); err != nil || n != 0 {
		t.Errorf("Expected b to be expired, got %d %v", n, err)
	}

	if err := c.Rename(ctx, "a", "renamed"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if !mon.Server.Exists("app:renamed") || mon.Server.Exists("app:a") {
		t.Errorf("Rename did not stay in namespace: %v", mon.Server.Keys())
	}
	if n, err := c.Delete(ctx, "renamed", "missing"); err != nil || n != 1 {
		t.Errorf("Delete: expected 1, got %d %v", n, err)
	}
}

// TestTenantIsolation tests that enumeration never leaves the namespace
func TestTenantIsolation(t *testing.T) {
	c, mon := newTestClient(t)
	ctx := context.Background()

	_ = mon.Server.Set("other:user:1", "x")
	_ = mon.Server.Set("appx:user:1", "x")
	for i := 0; i < 3; i++ {
		if _, err := c.Set(ctx, fmt.Sprintf("user:%d", i), i, SetOptions{}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	keys, err := c.Keys(ctx, "user:*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	sort.Strings(keys)
	expected := []string{"app:user:0", "app:user:1", "app:user:2"}
	if !reflect.DeepEqual(keys, expected) {
		t.Errorf("Keys: expected %v, got %v", expected, keys)
	}

	page, _, err := c.Scan(ctx, 0, ScanOptions{Count: 100})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	for _, k := range page {
		if !strings.HasPrefix(k, "app:") {
			t.Errorf("Scan returned foreign key %q", k)
		}
	}

	if raw, ok := c.Namespace().Strip(keys[0]); !ok || raw != "user:0" {
		t.Errorf("Strip: expected user:0, got %q %v", raw, ok)
	}
	if n, err := c.DeleteRaw(ctx, keys...); err != nil || n != 3 {
		t.Errorf("DeleteRaw: expected 3, got %d %v", n, err)
	}
	if !mon.Server.Exists("other:user:1") {
		t.Errorf("Foreign key was deleted")
	}
}

// TestTenantIsolationGlobPrefix tests that glob characters in a tenant
// prefix do not widen enumeration to other tenants
func TestTenantIsolationGlobPrefix(t *testing.T) {
	mon := topotest.NewMonitor(t)
	ctx := context.Background()

	tenant := func(prefix string) *Client {
		conf := testConfig()
		conf.Prefix = prefix
		c, err := New(ctx, conf, WithMonitorFactory(mon.Factory()))
		if err != nil {
			t.Fatalf("Failed to create client for %q: %v", prefix, err)
		}
		t.Cleanup(func() { _ = c.Close() })
		return c
	}

	for _, prefix := range []string{"a*", "a?", "[ab]", `a\b`} {
		t.Run(prefix, func(t *testing.T) {
			mon.Server.FlushAll()
			globbed, other := tenant(prefix), tenant("ab")

			if _, err := other.Set(ctx, "secret", 1, SetOptions{}); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if _, err := globbed.Set(ctx, "own", 1, SetOptions{}); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			own := globbed.MakeKey("own")

			keys, err := globbed.Keys(ctx, "*")
			if err != nil {
				t.Fatalf("Keys failed: %v", err)
			}
			if !reflect.DeepEqual(keys, []string{own}) {
				t.Errorf("Keys: expected [%s], got %v", own, keys)
			}

			it := globbed.ScanIter(ctx, ScanOptions{Count: 1})
			var scanned []string
			for k, ok := it.Next(); ok; k, ok = it.Next() {
				scanned = append(scanned, k)
			}
			if err := it.Close(); err != nil {
				t.Fatalf("ScanIter failed: %v", err)
			}
			if !reflect.DeepEqual(scanned, []string{own}) {
				t.Errorf("ScanIter: expected [%s], got %v", own, scanned)
			}
		})
	}
}

// TestScanIter tests a full scan pass over several pages
func TestScanIter(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	want := make(map[string]bool)
	for i := 0; i < 25; i++ {
		if _, err := c.Set(ctx, i, i, SetOptions{}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		want[c.MakeKey(i)] = true
	}

	it := c.ScanIter(ctx, ScanOptions{Count: 5})
	got := make(map[string]bool)
	for k, ok := it.Next(); ok; k, ok = it.Next() {
		got[k] = true
	}
	if err := it.Close(); err != nil {
		t.Fatalf("Iteration failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %d keys, got %d", len(want), len(got))
	}

	// a closed iterator yields nothing
	if _, ok := it.Next(); ok {
		t.Errorf("Expected closed iterator to be exhausted")
	}
}

// TestScanIterCancelled tests that a cancelled context aborts the iteration
func TestScanIterCancelled(t *testing.T) {
	c, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	it := c.ScanIter(ctx, ScanOptions{})
	if _, ok := it.Next(); ok {
		t.Errorf("Expected no element")
	}
	if err := it.Close(); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

// TestScanIterClosedMidPass tests that closing an iterator in the middle of
// a multi-page pass ends it without further round trips
func TestScanIterClosedMidPass(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if _, err := c.Set(ctx, i, i, SetOptions{}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	rec := &recorder{}
	conn, err := c.Topology().Conn(store.RoleReplica)
	if err != nil {
		t.Fatalf("No replica connection: %v", err)
	}
	conn.AddHook(rec)

	it := c.ScanIter(ctx, ScanOptions{Count: 1})
	for i := 0; i < 3; i++ {
		if _, ok := it.Next(); !ok {
			t.Fatalf("Expected element %d, iteration ended: %v", i, it.Err())
		}
	}
	if err := it.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	scans := len(rec.take())
	if scans == 0 {
		t.Fatalf("Expected scans before Close")
	}

	for i := 0; i < 3; i++ {
		if _, ok := it.Next(); ok {
			t.Errorf("Expected closed iterator to be exhausted")
		}
	}
	if got := rec.take(); len(got) != 0 {
		t.Errorf("Expected no commands after Close, got %v", got)
	}
	if err := it.Close(); err != nil {
		t.Errorf("Expected repeated Close to succeed, got %v", err)
	}
}

// TestPopVariants tests that the result variant follows the reply shape
func TestPopVariants(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := c.RPush(ctx, "l", "a", "b", "c", "d"); err != nil {
		t.Fatalf("RPush failed: %v", err)
	}

	p, err := c.LPop(ctx, "l", PopOptions{})
	if err != nil || p.Kind != PopSingle || p.Value != "a" {
		t.Errorf("LPop: expected single a, got %+v %v", p, err)
	}
	p, err = c.RPop(ctx, "l", PopCount(2))
	if err != nil || p.Kind != PopMany || !reflect.DeepEqual(p.Values, []any{"d", "c"}) {
		t.Errorf("RPop: expected many [d c], got %+v %v", p, err)
	}
	p, err = c.LPop(ctx, "l", PopCount(5))
	if err != nil || p.Kind != PopMany || !reflect.DeepEqual(p.All(), []any{"b"}) {
		t.Errorf("LPop count: expected many [b], got %+v %v", p, err)
	}
	p, err = c.LPop(ctx, "l", PopOptions{})
	if err != nil || p.Kind != PopEmpty || p.All() != nil {
		t.Errorf("LPop empty: expected empty, got %+v %v", p, err)
	}

	if _, err := c.SAdd(ctx, "s", "x"); err != nil {
		t.Fatalf("SAdd failed: %v", err)
	}
	p, err = c.SRandMember(ctx, "s", PopOptions{})
	if err != nil || p.Kind != PopSingle || p.Value != "x" {
		t.Errorf("SRandMember: expected single x, got %+v %v", p, err)
	}
	p, err = c.SPop(ctx, "s", PopCount(3))
	if err != nil || p.Kind != PopMany || !reflect.DeepEqual(p.Values, []any{"x"}) {
		t.Errorf("SPop: expected many [x], got %+v %v", p, err)
	}
	p, err = c.SPop(ctx, "s", PopOptions{})
	if err != nil || p.Kind != PopEmpty {
		t.Errorf("SPop empty: expected empty, got %+v %v", p, err)
	}
}

// TestPopCountArgs tests that every pop-like operation sends the count
// exactly when one is set, a count of 0 included
func TestPopCountArgs(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	rec := &recorder{}
	conn, err := c.Topology().Conn(store.RolePrimary)
	if err != nil {
		t.Fatalf("No primary connection: %v", err)
	}
	conn.AddHook(rec)

	pops := map[string]func(opts PopOptions) error{
		"lpop":    func(opts PopOptions) error { _, err := c.LPop(ctx, "l", opts); return err },
		"rpop":    func(opts PopOptions) error { _, err := c.RPop(ctx, "l", opts); return err },
		"spop":    func(opts PopOptions) error { _, err := c.SPop(ctx, "s", opts); return err },
		"zpopmin": func(opts PopOptions) error { _, err := c.ZPopMin(ctx, "z", opts); return err },
		"zpopmax": func(opts PopOptions) error { _, err := c.ZPopMax(ctx, "z", opts); return err },
	}

	testCases := []struct {
		name  string
		opts  PopOptions
		count []any
	}{
		{name: "NoCount", opts: PopOptions{}},
		{name: "Zero", opts: PopCount(0), count: []any{int64(0)}},
		{name: "Three", opts: PopCount(3), count: []any{int64(3)}},
	}

	for name, pop := range pops {
		for _, tc := range testCases {
			t.Run(name+"/"+tc.name, func(t *testing.T) {
				// the store may reject a count of 0, only the request matters here
				if err := ignoreStoreErr(pop(tc.opts)); err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				sent := rec.takeArgs()
				if len(sent) != 1 {
					t.Fatalf("Expected one command, got %v", sent)
				}
				if got := sent[0][2:]; !reflect.DeepEqual(got, tc.count) && !(len(got) == 0 && len(tc.count) == 0) {
					t.Errorf("Expected count args %v, got %v", tc.count, got)
				}
			})
		}
	}
}

// TestLists tests the list operations
func TestLists(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := c.RPush(ctx, "l", 1, 2, 3); err != nil {
		t.Fatalf("RPush failed: %v", err)
	}
	if _, err := c.LPush(ctx, "l", 0); err != nil {
		t.Fatalf("LPush failed: %v", err)
	}
	if err := c.LSet(ctx, "l", 1, "one"); err != nil {
		t.Fatalf("LSet failed: %v", err)
	}
	all, err := c.LRange(ctx, "l", 0, -1)
	if err != nil || !reflect.DeepEqual(all, []any{0, "one", 2, 3}) {
		t.Errorf("LRange: got %v %v", all, err)
	}
	if v, err := c.LIndex(ctx, "l", -1); err != nil || v != 3 {
		t.Errorf("LIndex: expected 3, got %v %v", v, err)
	}
	if v, err := c.LIndex(ctx, "l", 99); err != nil || v != nil {
		t.Errorf("LIndex out of range: expected nil, got %v %v", v, err)
	}
	if n, err := c.LRem(ctx, "l", 0, "one"); err != nil || n != 1 {
		t.Errorf("LRem: expected 1, got %d %v", n, err)
	}
	if err := c.LTrim(ctx, "l", 0, 1); err != nil {
		t.Fatalf("LTrim failed: %v", err)
	}
	if n, err := c.LLen(ctx, "l"); err != nil || n != 2 {
		t.Errorf("LLen: expected 2, got %d %v", n, err)
	}
}

// TestHashes tests the hash operations
func TestHashes(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := c.HSet(ctx, "h", map[string]any{"a": 1, "b": []any{"x"}}); err != nil {
		t.Fatalf("HSet failed: %v", err)
	}
	if v, err := c.HGet(ctx, "h", "b"); err != nil || !reflect.DeepEqual(v, []any{"x"}) {
		t.Errorf("HGet: got %v %v", v, err)
	}
	if v, err := c.HGet(ctx, "h", "missing"); err != nil || v != nil {
		t.Errorf("HGet missing: got %v %v", v, err)
	}
	vals, err := c.HMGet(ctx, "h", "a", "missing")
	if err != nil || !reflect.DeepEqual(vals, []any{1, nil}) {
		t.Errorf("HMGet: got %v %v", vals, err)
	}
	if ok, err := c.HSetNX(ctx, "h", "a", 2); err != nil || ok {
		t.Errorf("HSetNX existing: got %v %v", ok, err)
	}
	if ok, err := c.HExists(ctx, "h", "a"); err != nil || !ok {
		t.Errorf("HExists: got %v %v", ok, err)
	}
	fields, err := c.HKeys(ctx, "h")
	sort.Strings(fields)
	if err != nil || !reflect.DeepEqual(fields, []string{"a", "b"}) {
		t.Errorf("HKeys: got %v %v", fields, err)
	}
	if values, err := c.HVals(ctx, "h"); err != nil || len(values) != 2 {
		t.Errorf("HVals: got %v %v", values, err)
	}
	if n, err := c.HIncrBy(ctx, "hc", "n", 3); err != nil || n != 3 {
		t.Errorf("HIncrBy: got %d %v", n, err)
	}
	if f, err := c.HIncrByFloat(ctx, "hc", "f", 1.5); err != nil || f != 1.5 {
		t.Errorf("HIncrByFloat: got %v %v", f, err)
	}
	if n, err := c.HStrLen(ctx, "hc", "n"); err != nil || n != 1 {
		t.Errorf("HStrLen: got %d %v", n, err)
	}
	if n, err := c.HDel(ctx, "h", "a", "zzz"); err != nil || n != 1 {
		t.Errorf("HDel: got %d %v", n, err)
	}
	if n, err := c.HLen(ctx, "h"); err != nil || n != 1 {
		t.Errorf("HLen: got %d %v", n, err)
	}

	it := c.HScanIter(ctx, "h", ScanOptions{})
	var got []FieldValue
	for fv, ok := it.Next(); ok; fv, ok = it.Next() {
		got = append(got, fv)
	}
	if err := it.Close(); err != nil {
		t.Fatalf("HScanIter failed: %v", err)
	}
	if !reflect.DeepEqual(got, []FieldValue{{Field: "b", Value: []any{"x"}}}) {
		t.Errorf("HScanIter: got %v", got)
	}
}

// TestSets tests the set operations
func TestSets(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if n, err := c.SAdd(ctx, "s1", "a", "b", "c"); err != nil || n != 3 {
		t.Fatalf("SAdd: got %d %v", n, err)
	}
	if _, err := c.SAdd(ctx, "s2", "b", "d"); err != nil {
		t.Fatalf("SAdd failed: %v", err)
	}

	check := func(name string, got []any, err error, expected ...string) {
		t.Helper()
		if err != nil {
			t.Errorf("%s failed: %v", name, err)
			return
		}
		strs := make([]string, len(got))
		for i, v := range got {
			strs[i] = v.(string)
		}
		sort.Strings(strs)
		if !reflect.DeepEqual(strs, expected) {
			t.Errorf("%s: expected %v, got %v", name, expected, strs)
		}
	}

	members, err := c.SMembers(ctx, "s1")
	check("SMembers", members, err, "a", "b", "c")
	diff, err := c.SDiff(ctx, "s1", "s2")
	check("SDiff", diff, err, "a", "c")
	inter, err := c.SInter(ctx, "s1", "s2")
	check("SInter", inter, err, "b")
	union, err := c.SUnion(ctx, "s1", "s2")
	check("SUnion", union, err, "a", "b", "c", "d")

	if ok, err := c.SIsMember(ctx, "s1", "a"); err != nil || !ok {
		t.Errorf("SIsMember: got %v %v", ok, err)
	}
	if ok, err := c.SMove(ctx, "s1", "s2", "a"); err != nil || !ok {
		t.Errorf("SMove: got %v %v", ok, err)
	}
	if n, err := c.SRem(ctx, "s1", "b"); err != nil || n != 1 {
		t.Errorf("SRem: got %d %v", n, err)
	}
	if n, err := c.SCard(ctx, "s2"); err != nil || n != 3 {
		t.Errorf("SCard: got %d %v", n, err)
	}

	it := c.SScanIter(ctx, "s2", ScanOptions{})
	var scanned []any
	for m, ok := it.Next(); ok; m, ok = it.Next() {
		scanned = append(scanned, m)
	}
	check("SScanIter", scanned, it.Close(), "a", "b", "d")
}

// TestSortedSets tests the sorted set operations
func TestSortedSets(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	members := []Z{{Member: "a", Score: 1}, {Member: "b", Score: 2}, {Member: "c", Score: 3}}
	if n, err := c.ZAdd(ctx, "z", ZAddOptions{}, members...); err != nil || n != 3 {
		t.Fatalf("ZAdd: got %d %v", n, err)
	}
	if n, err := c.ZAdd(ctx, "z", ZAddOptions{Mode: ZAddXX, CH: true}, Z{Member: "a", Score: 5}, Z{Member: "new", Score: 0}); err != nil || n != 1 {
		t.Errorf("ZAdd XX CH: expected 1 changed, got %d %v", n, err)
	}

	if v, err := c.ZRange(ctx, "z", 0, -1, ZRangeOptions{}); err != nil || !reflect.DeepEqual(v, []any{"b", "c", "a"}) {
		t.Errorf("ZRange: got %v %v", v, err)
	}
	if v, err := c.ZRange(ctx, "z", 2, 3, ZRangeOptions{ByScore: true}); err != nil || !reflect.DeepEqual(v, []any{"b", "c"}) {
		t.Errorf("ZRange by score: got %v %v", v, err)
	}
	if v, err := c.ZRevRange(ctx, "z", 0, 0); err != nil || !reflect.DeepEqual(v, []any{"a"}) {
		t.Errorf("ZRevRange: got %v %v", v, err)
	}
	by := ZRangeBy{Min: "2", Max: "(5"}
	if v, err := c.ZRangeByScoreWithScores(ctx, "z", by); err != nil ||
		!reflect.DeepEqual(v, []Z{{Member: "b", Score: 2}, {Member: "c", Score: 3}}) {
		t.Errorf("ZRangeByScoreWithScores: got %v %v", v, err)
	}
	if v, err := c.ZRevRangeByScore(ctx, "z", ZRangeBy{Min: "-inf", Max: "+inf", Count: 1}); err != nil ||
		!reflect.DeepEqual(v, []any{"a"}) {
		t.Errorf("ZRevRangeByScore: got %v %v", v, err)
	}
	if n, err := c.ZCount(ctx, "z", "2", "3"); err != nil || n != 2 {
		t.Errorf("ZCount: got %d %v", n, err)
	}

	if rank, ok, err := c.ZRank(ctx, "z", "c"); err != nil || !ok || rank != 1 {
		t.Errorf("ZRank: got %d %v %v", rank, ok, err)
	}
	if rank, ok, err := c.ZRevRank(ctx, "z", "c"); err != nil || !ok || rank != 1 {
		t.Errorf("ZRevRank: got %d %v %v", rank, ok, err)
	}
	if _, ok, err := c.ZRank(ctx, "z", "missing"); err != nil || ok {
		t.Errorf("ZRank missing: got %v %v", ok, err)
	}
	if score, ok, err := c.ZScore(ctx, "z", "a"); err != nil || !ok || score != 5 {
		t.Errorf("ZScore: got %v %v %v", score, ok, err)
	}
	if score, err := c.ZIncrBy(ctx, "z", 0.5, "b"); err != nil || score != 2.5 {
		t.Errorf("ZIncrBy: got %v %v", score, err)
	}

	if v, err := c.ZPopMin(ctx, "z", PopCount(1)); err != nil || !reflect.DeepEqual(v, []Z{{Member: "b", Score: 2.5}}) {
		t.Errorf("ZPopMin: got %v %v", v, err)
	}
	if v, err := c.ZPopMax(ctx, "z", PopOptions{}); err != nil || !reflect.DeepEqual(v, []Z{{Member: "a", Score: 5}}) {
		t.Errorf("ZPopMax: got %v %v", v, err)
	}

	if _, err := c.ZAdd(ctx, "z", ZAddOptions{Mode: ZAddNX}, Z{Member: "d", Score: 10}, Z{Member: "e", Score: 20}); err != nil {
		t.Fatalf("ZAdd NX failed: %v", err)
	}
	it := c.ZScanIter(ctx, "z", ScanOptions{})
	var scanned []Z
	for z, ok := it.Next(); ok; z, ok = it.Next() {
		scanned = append(scanned, z)
	}
	if err := it.Close(); err != nil || len(scanned) != 3 {
		t.Errorf("ZScanIter: got %v %v", scanned, err)
	}

	if n, err := c.ZRemRangeByScore(ctx, "z", "15", "+inf"); err != nil || n != 1 {
		t.Errorf("ZRemRangeByScore: got %d %v", n, err)
	}
	if n, err := c.ZRemRangeByRank(ctx, "z", 0, 0); err != nil || n != 1 {
		t.Errorf("ZRemRangeByRank: got %d %v", n, err)
	}
	if n, err := c.ZRem(ctx, "z", "d", "zzz"); err != nil || n != 1 {
		t.Errorf("ZRem: got %d %v", n, err)
	}
	if n, err := c.ZCard(ctx, "z"); err != nil || n != 0 {
		t.Errorf("ZCard: got %d %v", n, err)
	}
}

// TestPipelines tests write and read pipelines with the exported helpers
func TestPipelines(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	for _, tx := range []bool{false, true} {
		t.Run(fmt.Sprintf("tx=%v", tx), func(t *testing.T) {
			key := fmt.Sprintf("p-%v", tx)
			_, err := c.WritePipelined(ctx, tx, func(p redis.Pipeliner) error {
				data, err := c.EncodeValue("piped")
				if err != nil {
					return err
				}
				p.Set(ctx, c.MakeKey(key), data, 0)
				p.Incr(ctx, c.MakeKey(key+"-n"))
				return nil
			})
			if err != nil {
				t.Fatalf("WritePipelined failed: %v", err)
			}

			var get *redis.StringCmd
			if _, err := c.ReadPipelined(ctx, tx, func(p redis.Pipeliner) error {
				get = p.Get(ctx, c.MakeKey(key))
				return nil
			}); err != nil {
				t.Fatalf("ReadPipelined failed: %v", err)
			}
			raw, err := get.Bytes()
			if err != nil {
				t.Fatalf("Pipelined get failed: %v", err)
			}
			if v, err := c.DecodeValue(raw); err != nil || v != "piped" {
				t.Errorf("Expected piped, got %v %v", v, err)
			}
		})
	}

	// an error in the callback aborts before anything is sent
	boom := errors.New("abort")
	_, err := c.WritePipelined(ctx, true, func(p redis.Pipeliner) error {
		p.Set(ctx, c.MakeKey("never"), "x", 0)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Expected callback error, got %v", err)
	}
	if n, _ := c.Exists(ctx, "never"); n != 0 {
		t.Errorf("Expected aborted pipeline to write nothing")
	}
}

// TestTransaction tests that watched keys are namespaced
func TestTransaction(t *testing.T) {
	c, mon := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Set(ctx, "balance", 10, SetOptions{}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	err := c.Transaction(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, c.MakeKey("balance")).Bytes()
		if err != nil {
			return err
		}
		v, err := c.DecodeValue(raw)
		if err != nil {
			return err
		}
		data, err := c.EncodeValue(v.(int) + 5)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, c.MakeKey("balance"), data, 0)
			return nil
		})
		return err
	}, "balance")
	if err != nil {
		t.Fatalf("Transaction failed: %v", err)
	}
	if v, err := c.Get(ctx, "balance"); err != nil || v != 15 {
		t.Errorf("Expected 15, got %v %v", v, err)
	}

	// a concurrent change of a watched key fails the transaction
	err = c.Transaction(ctx, func(tx *redis.Tx) error {
		_ = mon.Server.Set("app:balance", "changed")
		_, err := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, c.MakeKey("balance"), "x", 0)
			return nil
		})
		return err
	}, "balance")
	if !errors.Is(err, redis.TxFailedErr) {
		t.Errorf("Expected TxFailedErr, got %v", err)
	}
}

// TestCommandMetrics tests that the command hook records per role metrics
func TestCommandMetrics(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.Get(ctx, "m"); err != nil {
			t.Fatalf("Get failed: %v", err)
		}
	}
	if _, err := c.Incr(ctx, "m", 1); err != nil {
		t.Fatalf("Incr failed: %v", err)
	}

	gets := c.Metrics().GetOrCreateCounter(`credis_commands_total{role="replica",cmd="get"}`).Get()
	if gets != 3 {
		t.Errorf("Expected 3 replica gets, got %d", gets)
	}
	incrs := c.Metrics().GetOrCreateCounter(`credis_commands_total{role="primary",cmd="incrby"}`).Get()
	if incrs != 1 {
		t.Errorf("Expected 1 primary incrby, got %d", incrs)
	}
	misses := c.Metrics().GetOrCreateCounter(`credis_command_errors_total{role="replica",cmd="get"}`).Get()
	if misses != 0 {
		t.Errorf("Expected missing keys not to count as errors, got %d", misses)
	}
}
