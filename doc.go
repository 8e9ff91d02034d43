// Package splice is a two-track timeline compositor. Given up to two trimmed
// clips, a transition between them, time-bounded text and image overlays and
// a chain of color effects, it renders each output frame deterministically
// and hands it to a [Sink].
//
// Preview and export share one rendering path, so a frame rendered by
// [Engine.RenderFrame] is identical to the frame an [Exporter] writes for the
// same timeline time.
//
// # Quick start
//
//	tl := splice.NewTimeline(1280, 720)
//	tl.AddClip(splice.NewClip(splice.NewSolidSource(1280, 720, splice.ColorBlack, 10), 10))
//	tl.AddOverlay(splice.NewTextOverlay("Hello", 0, 5))
//
//	engine := splice.NewEngine()
//	frame, err := engine.RenderFrame(ctx, tl.Snapshot(), 2.5)
//
// # Timeline
//
// A [Timeline] holds at most two clips. With two clips and a [Transition]
// the second clip starts before the first ends; the overlap is the
// effective transition duration, clamped to the shorter clip. [MapTime]
// resolves a timeline time to a [TimeState] naming which clip(s) are active
// and their local times.
//
// Clips are trimmed with TrimStart/TrimEnd and may play reversed. Each clip
// interpolates linearly between StartTransform and EndTransform (scale and
// pan) across its trimmed duration, and carries its own chroma key, blur and
// color grading.
//
// # Overlays
//
// An [Overlay] is visible while Start ≤ t ≤ End. Its content is either
// [TextContent] or [ImageContent]. Overlays are drawn in ZIndex order,
// optionally masked ([Mask]) and animated in and out ([Animate]).
//
// # Filters
//
// The global look is a [FilterSelection]: a preset followed by an effect,
// each expanding to an ordered list of [Adjustment] values compiled into an
// [EffectChain] of CPU filters.
//
// # Export
//
// [Exporter] walks the timeline at the configured frame rate, scaled by the
// playback speed, and writes each frame to a [Sink]. [PNGSink] writes
// numbered PNG files; the ffmpeg sub-package encodes video. Exports are
// cancellable between frames, in which case the sink's partial output is
// discarded.
//
// Projects can be described in YAML and loaded with [LoadProject].
package splice
