//go:build windows

package console

import (
	"log/slog"
	"os"
	"slices"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

var procGetConsoleWindow = windows.NewLazySystemDLL("kernel32.dll").NewProc("GetConsoleWindow")

var shells = []string{"cmd.exe", "powershell.exe", "pwsh.exe", "wt.exe", "conhost.exe", "windowsterminal.exe"}

// StartedFromExplorer reports whether the process was launched outside a
// shell, in which case its console closes as soon as it exits.
func StartedFromExplorer() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	if hwnd == 0 {
		return true
	}
	parent := strings.ToLower(parentProcessName())
	slog.Debug("parent process", "name", parent)
	if slices.Contains(shells, parent) {
		return false
	}
	return parent == "explorer.exe"
}

func parentProcessName() string {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(snap)

	var pe windows.ProcessEntry32
	pe.Size = uint32(unsafe.Sizeof(pe))

	self := uint32(os.Getpid())
	ppid := uint32(0)
	names := map[uint32]string{}
	for err = windows.Process32First(snap, &pe); err == nil; err = windows.Process32Next(snap, &pe) {
		names[pe.ProcessID] = windows.UTF16ToString(pe.ExeFile[:])
		if pe.ProcessID == self {
			ppid = pe.ParentProcessID
		}
	}
	return names[ppid]
}
