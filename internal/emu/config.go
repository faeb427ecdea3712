package emu

// Config carries the settings that affect emulation behavior but not its
// core semantics: whether to run the boot ROM, which display palette to
// use, and whether to trace executed instructions.
type Config struct {
	SkipBoot  bool // apply the documented post-boot register state instead of running a boot ROM
	Nostalgic bool // use the green "nostalgic" palette instead of grey
	Trace     bool // log PC, A, F, SP and cycle count after each instruction
}
