// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scene renders the animated backdrop behind the chat widget.
//
// A Scene owns a perspective camera, a character raster and a set of
// objects. Singleton objects spin about the Y axis. Cloned objects float in
// a box around the origin, wobble with a per-object "jelly" scale and turn
// to look at the point where the pointer ray crosses their depth plane.
//
// The scene has no goroutines of its own. The caller drives it:
//
//	sc := scene.New(scene.FromConfig(cfg.Scene)...)
//	defer sc.Close()
//	sc.Resize(w, h)
//	sc.AddSingleton(orb)
//	sc.SpawnClones(eye)
//	// on every frame
//	sc.SetPointer(col, row)
//	sc.Step(time.Now())
//	lines := sc.Render().Lines()
package scene
