package main

import "testing"

func TestPoolAllocateAfterScansForwardAndWraps(t *testing.T) {
	pool := NewPool()
	pool.Get(0).active = true
	pool.Get(1).active = true

	p := pool.AllocateAfter(0)
	if p == nil {
		t.Fatal("expected a free PCB")
	}
	if p.pid != 2 {
		t.Errorf("pid = %d, want 2", p.pid)
	}

	// Fill every slot but the last allocated one should still wrap around.
	for i := range pool.procs {
		pool.procs[i].active = true
	}
	pool.procs[0].active = false
	p = pool.AllocateAfter(ProcessID(MaxProcesses - 1))
	if p == nil || p.pid != 0 {
		t.Fatalf("expected wraparound to pid 0, got %+v", p)
	}
}

func TestPoolAllocateAfterExhaustion(t *testing.T) {
	pool := NewPool()
	for i := range pool.procs {
		pool.procs[i].active = true
	}
	if p := pool.AllocateAfter(0); p != nil {
		t.Errorf("expected nil from an exhausted pool, got pid %d", p.pid)
	}
}

func TestPoolActiveCount(t *testing.T) {
	pool := NewPool()
	if got := pool.ActiveCount(); got != 0 {
		t.Fatalf("ActiveCount = %d, want 0 on a fresh pool", got)
	}
	pool.Get(3).active = true
	pool.Get(5).active = true
	if got := pool.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d, want 2", got)
	}
}

func TestPCBResetClearsEverythingButPidAndParent(t *testing.T) {
	pool := NewPool()
	p := pool.Get(2)
	p.active = true
	p.runnable = true
	p.argsLen = 5
	p.haltRequested = true

	p.reset(2)

	if p.pid != 2 {
		t.Errorf("pid = %d, want 2 to survive reset", p.pid)
	}
	if p.parent != noProcess {
		t.Errorf("parent = %d, want noProcess after reset", p.parent)
	}
	if p.active || p.runnable || p.argsLen != 0 || p.haltRequested {
		t.Errorf("reset left stale state: %+v", p)
	}
}

func TestPoolGetOutOfRange(t *testing.T) {
	pool := NewPool()
	if pool.Get(-1) != nil {
		t.Error("Get(-1) should return nil")
	}
	if pool.Get(MaxProcesses) != nil {
		t.Error("Get(MaxProcesses) should return nil")
	}
}
