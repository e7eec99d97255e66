package abi

import (
	"reflect"
	"strconv"
	"strings"
)

// Word is the set of Go types that travel through an integer register of the
// native calling convention. Pointers cross as uintptr (or a named uintptr type).
type Word interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Void is the result type of blocks returning void. Wrappers parametrized with
// Void get a void-returning trampoline and discard the closure result.
type Void uintptr

var voidType = reflect.TypeFor[Void]()

// IsVoid reports whether T is Void.
func IsVoid[T any]() bool {
	return reflect.TypeFor[T]() == voidType
}

// Encoding returns the ObjC @encode string for a Word type, or "v" for Void.
func Encoding[T Word]() string {
	t := reflect.TypeFor[T]()
	if t == voidType {
		return "v"
	}
	return encodeKind(t.Kind())
}

func encodeKind(k reflect.Kind) string {
	switch k {
	case reflect.Int8:
		return "c"
	case reflect.Uint8:
		return "C"
	case reflect.Int16:
		return "s"
	case reflect.Uint16:
		return "S"
	case reflect.Int32:
		return "i"
	case reflect.Uint32:
		return "I"
	case reflect.Int64:
		return "q"
	case reflect.Uint64:
		return "Q"
	case reflect.Int:
		if wordSize == 8 {
			return "q"
		}
		return "i"
	case reflect.Uint, reflect.Uintptr:
		if wordSize == 8 {
			return "Q"
		}
		return "I"
	default:
		return "?"
	}
}

const wordSize = 4 << (^uintptr(0) >> 63)

// frameSize is the argument slot size clang uses when building block signatures:
// the type's size rounded up to sizeof(int).
func frameSize(enc string) int {
	switch enc {
	case "c", "C", "s", "S", "i", "I":
		return 4
	case "q", "Q":
		return 8
	default:
		return wordSize
	}
}

// SignatureOf builds a block type encoding from a result encoding and argument
// encodings, in the form clang emits ("v24@?0Q8q16": result, frame size, the
// block itself at offset 0, then each argument with its offset).
func SignatureOf(result string, args ...string) string {
	var b strings.Builder
	offset := wordSize
	for _, a := range args {
		offset += frameSize(a)
	}
	b.WriteString(result)
	b.WriteString(strconv.Itoa(offset))
	b.WriteString("@?0")
	offset = wordSize
	for _, a := range args {
		b.WriteString(a)
		b.WriteString(strconv.Itoa(offset))
		offset += frameSize(a)
	}
	return b.String()
}
