// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with github.com/jfreymuth/oggvorbis.
//
// Reads always cover whole frames, so a buffer shorter than one frame
// returns zero samples without an error.
package vorbis
