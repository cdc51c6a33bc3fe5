// Package fpttts synthesizes speech through FPT.AI's asynchronous TTS v5 API.
//
// A submit request returns a download link that only becomes available once
// synthesis completes. The client polls that link on a fixed interval for a
// bounded number of attempts (Submitted → Polling → Ready | Exhausted), then
// hands the fetched MP3 to an AudioNormalizer that converts it to WAV.
// Exhausting the attempt budget yields services.ErrTimeout.
package fpttts
