// Package parser implements the parser adapter (spec.md §4.3): it turns a
// preprocessed file's text into an ast.Program, registering a Span for
// every node through the sourcemap's SpanMaker, or returns a structured
// parse error when the text cannot be made sense of.
//
// Grounded on the teacher's internal/lexer + internal/parser split: a
// hand-rolled scanner producing a flat Token stream, consumed by a
// recursive-descent parser that builds the tree directly (no parser
// generator, matching go-dws's parser_builder.go style of small, named
// parseX methods).
package parser

// Kind tags a lexical token.
type Kind int

const (
	TokEOF Kind = iota
	TokIdent
	TokInt
	TokFloat
	TokString
	TokName // a 'single-quoted' Dialect name literal

	// Punctuation / operators.
	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokLAngle
	TokRAngle
	TokLBracket
	TokRBracket
	TokComma
	TokColon
	TokSemicolon
	TokDot
	TokAt
	TokArrow // ->

	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokPercent
	TokAmp
	TokPipe
	TokCaret
	TokAndAnd
	TokOrOr
	TokBang
	TokEq       // =
	TokEqEq     // ==
	TokNotEq    // !=
	TokLe       // <=
	TokGe       // >=

	// Keywords.
	TokFunction
	TokTimer
	TokEvent
	TokEntry
	TokLatent
	TokExec
	TokClass
	TokStruct
	TokState
	TokEnum
	TokExtends
	TokIn
	TokVar
	TokReturn
	TokIf
	TokElse
	TokWhile
	TokFor
	TokSwitch
	TokCase
	TokDefault
	TokNew
	TokAs
	TokOptional
	TokOut
	TokPublic
	TokPrivate
	TokProtected
	TokEditable
	TokSaved
	TokTrue
	TokFalse
	TokThis
	TokParent
	TokReplaceMethod
	TokWrapMethod
	TokAddMethod
	TokAddField
)

var keywords = map[string]Kind{
	"function":      TokFunction,
	"timer":         TokTimer,
	"event":         TokEvent,
	"entry":         TokEntry,
	"latent":        TokLatent,
	"exec":          TokExec,
	"class":         TokClass,
	"struct":        TokStruct,
	"state":         TokState,
	"enum":          TokEnum,
	"extends":       TokExtends,
	"in":            TokIn,
	"var":           TokVar,
	"return":        TokReturn,
	"if":            TokIf,
	"else":          TokElse,
	"while":         TokWhile,
	"for":           TokFor,
	"switch":        TokSwitch,
	"case":          TokCase,
	"default":       TokDefault,
	"new":           TokNew,
	"as":            TokAs,
	"optional":      TokOptional,
	"out":           TokOut,
	"public":        TokPublic,
	"private":       TokPrivate,
	"protected":     TokProtected,
	"editable":      TokEditable,
	"saved":         TokSaved,
	"true":          TokTrue,
	"false":         TokFalse,
	"this":          TokThis,
	"parent":        TokParent,
	"replaceMethod": TokReplaceMethod,
	"wrapMethod":    TokWrapMethod,
	"addMethod":     TokAddMethod,
	"addField":      TokAddField,
}

// Token is one lexed unit: its kind, literal text, and byte offsets into
// the source (inclusive-left, exclusive-right), handed to the SpanMaker.
type Token struct {
	Kind       Kind
	Text       string
	Left, Right int
}
