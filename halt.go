package main

// haltProcess implements spec.md §4.I. It is called from runProcess once
// the child's bytecode has stopped one way or another (OpHalt, the halt
// syscall, or an exception) and returns the status execute should hand
// back to its caller.
//
// The topmost shell (parent_pid == noProcess) halts the same way; its
// execute call returns the status to kernel.go's runShellLoop, which
// immediately re-executes it, giving each terminal a perpetually-respawning
// shell.
func haltProcess(k *Kernel, p *PCB, status int32) int32 {
	k.mu.Lock()
	p.active = false
	p.runnable = false
	p.descs.CloseAllUser()
	k.mu.Unlock()

	k.releasePCB(p.pid)
	return status
}
