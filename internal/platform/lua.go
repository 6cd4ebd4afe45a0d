package platform

import (
	lua "github.com/yuin/gopher-lua"
)

// InjectPlatformTable publishes info as the read-only global "platform" so a
// launcher config can branch on the host:
//
//	cache_dir = platform.when(platform.is_windows, "D:\\cache") or "/var/cache/boj"
func InjectPlatformTable(L *lua.LState, info *Info) error {
	fields := L.NewTable()

	for name, value := range map[string]string{
		"os":             info.OS,
		"arch":           info.Arch,
		"key":            info.Key(),
		"libc":           info.Libc,
		"distro":         info.Distro,
		"distro_version": info.DistroVersion,
	} {
		if value == "" {
			continue
		}
		L.SetField(fields, name, lua.LString(value))
	}

	L.SetField(fields, "is_linux", lua.LBool(info.IsLinux()))
	L.SetField(fields, "is_macos", lua.LBool(info.IsMacOS()))
	L.SetField(fields, "is_windows", lua.LBool(info.IsWindows()))
	L.SetField(fields, "is_musl", lua.LBool(info.IsMusl()))

	// when(cond, value) yields value when cond holds, nil otherwise.
	L.SetField(fields, "when", L.NewFunction(func(L *lua.LState) int {
		if L.CheckBool(1) {
			L.Push(L.Get(2))
		} else {
			L.Push(lua.LNil)
		}
		return 1
	}))

	L.SetGlobal("platform", readOnlyView(L, fields, "platform"))
	return nil
}

// readOnlyView returns an empty table whose reads fall through to fields and
// whose writes raise an error naming the table.
func readOnlyView(L *lua.LState, fields *lua.LTable, name string) *lua.LTable {
	meta := L.NewTable()
	L.SetField(meta, "__index", fields)
	L.SetField(meta, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("%s is read-only", name)
		return 0
	}))
	L.SetField(meta, "__metatable", lua.LFalse)

	view := L.NewTable()
	L.SetMetatable(view, meta)
	return view
}
