package lexer

import (
	"strings"
)

// TokenType represents the type of a token.
type TokenType string

// Token represents a lexical token.
type Token struct {
	Type     TokenType
	Literal  string // The actual text of the token (lexeme)
	Line     int    // 1-based line number where the token starts
	Column   int    // 1-based column number (rune index) where the token starts
	StartPos int    // 0-based byte offset where the token starts
	EndPos   int    // 0-based byte offset after the token ends
}

// --- Token Types ---
const (
	// Special
	ILLEGAL TokenType = "ILLEGAL" // Unknown token/character
	EOF     TokenType = "EOF"     // End Of File

	// Identifiers + Literals
	IDENT     TokenType = "IDENT"  // functionName, variableName
	NUMBER    TokenType = "NUMBER" // 123, 45.67
	STRING    TokenType = "STRING" // "hello world"
	MARKUP    TokenType = "MARKUP" // raw embedded markup element text
	NULL      TokenType = "NULL"
	UNDEFINED TokenType = "UNDEFINED"

	// Operators
	ASSIGN   TokenType = "="
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	BANG     TokenType = "!"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	LT       TokenType = "<"
	GT       TokenType = ">"
	EQ       TokenType = "=="
	NOT_EQ   TokenType = "!="
	LE       TokenType = "<="
	GE       TokenType = ">="
	DOT      TokenType = "." // member access

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"
	ARROW     TokenType = "=>"

	// Keywords
	FUNCTION TokenType = "FUNCTION"
	LET      TokenType = "LET"
	CONST    TokenType = "CONST"
	VAR      TokenType = "VAR"
	TRUE     TokenType = "TRUE"
	FALSE    TokenType = "FALSE"
	IF       TokenType = "IF"
	ELSE     TokenType = "ELSE"
	RETURN   TokenType = "RETURN"

	// Logical Operators
	LOGICAL_AND TokenType = "&&"
	LOGICAL_OR  TokenType = "||"

	// Strict Equality Operators
	STRICT_EQ     TokenType = "==="
	STRICT_NOT_EQ TokenType = "!=="
)

var keywords = map[string]TokenType{
	"function":  FUNCTION,
	"let":       LET,
	"const":     CONST,
	"var":       VAR,
	"true":      TRUE,
	"false":     FALSE,
	"if":        IF,
	"else":      ELSE,
	"return":    RETURN,
	"null":      NULL,
	"undefined": UNDEFINED,
}

// LookupIdent checks the keywords table for an identifier.
func LookupIdent(ident string) TokenType {
	if tokType, ok := keywords[ident]; ok {
		return tokType
	}
	return IDENT
}

// wordTokens are the token types whose lexeme is a bare word: identifiers
// plus every reserved word.
var wordTokens = func() map[TokenType]bool {
	m := map[TokenType]bool{IDENT: true}
	for _, t := range keywords {
		m[t] = true
	}
	return m
}()

// IsWordToken reports whether t lexes as a bare word. Property names after
// '.' accept any word token, so accesses like x.else stay valid.
func IsWordToken(t TokenType) bool { return wordTokens[t] }

// Lexer holds the state of the scanner.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char's byte offset)
	readPosition int  // current reading position in input (byte offset after current char)
	ch           byte // current char under examination
	line         int  // current 1-based line number
	column       int  // current 1-based column number (position of l.position on l.line)
}

// CurrentPosition returns the lexer's current byte position in the input.
// Needed for parser backtracking.
func (l *Lexer) CurrentPosition() int {
	return l.position
}

// SetPosition resets the lexer to a specific byte position and re-reads the character.
// Needed for parser backtracking.
// Warning: Does not recalculate line numbers accurately if jumping significantly.
// Assumes backtracking is local and line changes are minimal or irrelevant for the backtrack.
func (l *Lexer) SetPosition(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos >= len(l.input) {
		l.position = len(l.input)
		l.readPosition = len(l.input)
		l.ch = 0 // EOF
		return
	}
	l.position = pos
	l.readPosition = pos + 1
	l.ch = l.input[l.position]
	// NOTE: Line number is NOT recalculated here. Backtracking assumes it's okay.
}

// NewLexer creates a new Lexer.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 1} // Start at line 1, column 1
	l.readChar()
	return l
}

// readChar gives us the next character and advances our position in the input string.
// It also updates the line and column count.
func (l *Lexer) readChar() {
	// Before advancing, check if the current character was a newline
	if l.ch == '\n' {
		l.line++
		l.column = 0 // Reset column, it will be incremented below
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0 // 0 is ASCII for NUL, signifies EOF
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar looks ahead in the input without consuming the character.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// skipWhitespace consumes whitespace characters (space, tab, newline, carriage return).
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// NextToken scans the input and returns the next token.
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	// Capture token start position *after* skipping whitespace
	startLine := l.line
	startCol := l.column
	startPos := l.position

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			l.readChar() // Consume '='
			if l.peekChar() == '=' {
				l.readChar()                                // Consume second '='
				literal := l.input[startPos : l.position+1] // Read the actual '==='
				l.readChar()
				tok = Token{Type: STRICT_EQ, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
			} else {
				literal := l.input[startPos : l.position+1] // Read the actual '=='
				l.readChar()
				tok = Token{Type: EQ, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
			}
		} else if l.peekChar() == '>' {
			l.readChar()                                // Consume '>'
			literal := l.input[startPos : l.position+1] // Read the actual '=>'
			l.readChar()
			tok = Token{Type: ARROW, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		} else {
			literal := string(l.ch)
			l.readChar()
			tok = Token{Type: ASSIGN, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar() // Consume '='
			if l.peekChar() == '=' {
				l.readChar()                                // Consume second '='
				literal := l.input[startPos : l.position+1] // Read the actual '!=='
				l.readChar()
				tok = Token{Type: STRICT_NOT_EQ, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
			} else {
				literal := l.input[startPos : l.position+1] // Read the actual '!='
				l.readChar()
				tok = Token{Type: NOT_EQ, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
			}
		} else {
			literal := string(l.ch)
			l.readChar()
			tok = Token{Type: BANG, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}
	case '+':
		literal := string(l.ch)
		l.readChar()
		tok = Token{Type: PLUS, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	case '-':
		literal := string(l.ch)
		l.readChar()
		tok = Token{Type: MINUS, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	case '*':
		literal := string(l.ch)
		l.readChar()
		tok = Token{Type: ASTERISK, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	case '/':
		if l.peekChar() == '/' {
			l.skipComment()      // Skips to the end of the line or EOF
			return l.NextToken() // Recursively call NextToken to get the token after the comment
		} else if l.peekChar() == '*' {
			if !l.skipMultilineComment() { // Skips until '*/' or EOF
				literal := "Unterminated multiline comment"
				tok = Token{Type: ILLEGAL, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
				return tok
			}
			return l.NextToken() // Get the token after the multiline comment
		} else {
			literal := string(l.ch)
			l.readChar()
			tok = Token{Type: SLASH, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()                                // Consume second '&'
			literal := l.input[startPos : l.position+1] // Read the actual '&&'
			l.readChar()
			tok = Token{Type: LOGICAL_AND, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		} else {
			// Single '&' is illegal in this dialect subset
			literal := string(l.ch)
			l.readChar()
			tok = Token{Type: ILLEGAL, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()                                // Consume second '|'
			literal := l.input[startPos : l.position+1] // Read the actual '||'
			l.readChar()
			tok = Token{Type: LOGICAL_OR, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		} else {
			literal := string(l.ch)
			l.readChar()
			tok = Token{Type: ILLEGAL, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()                                // Consume '='
			literal := l.input[startPos : l.position+1] // Read the actual '<='
			l.readChar()
			tok = Token{Type: LE, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		} else {
			literal := string(l.ch)
			l.readChar()
			tok = Token{Type: LT, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()                                // Consume '='
			literal := l.input[startPos : l.position+1] // Read the actual '>='
			l.readChar()
			tok = Token{Type: GE, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		} else {
			literal := string(l.ch)
			l.readChar()
			tok = Token{Type: GT, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}
	case ';':
		literal := string(l.ch)
		l.readChar()
		tok = Token{Type: SEMICOLON, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	case ':':
		literal := string(l.ch)
		l.readChar()
		tok = Token{Type: COLON, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	case ',':
		literal := string(l.ch)
		l.readChar()
		tok = Token{Type: COMMA, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	case '(':
		literal := string(l.ch)
		l.readChar()
		tok = Token{Type: LPAREN, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	case ')':
		literal := string(l.ch)
		l.readChar()
		tok = Token{Type: RPAREN, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	case '{':
		literal := string(l.ch)
		l.readChar()
		tok = Token{Type: LBRACE, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	case '}':
		literal := string(l.ch)
		l.readChar()
		tok = Token{Type: RBRACE, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	case '[':
		literal := string(l.ch)
		l.readChar()
		tok = Token{Type: LBRACKET, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	case ']':
		literal := string(l.ch)
		l.readChar()
		tok = Token{Type: RBRACKET, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	case '"': // Double quoted string
		literal, ok := l.readString('"')
		endPos := l.position // readString advances past the closing quote if successful
		if !ok {
			tok = Token{Type: ILLEGAL, Literal: "Invalid string literal", Line: startLine, Column: startCol, StartPos: startPos, EndPos: endPos}
		} else {
			tok = Token{Type: STRING, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: endPos}
		}
	case '\'': // Single quoted string
		literal, ok := l.readString('\'')
		endPos := l.position
		if !ok {
			tok = Token{Type: ILLEGAL, Literal: "Invalid string literal", Line: startLine, Column: startCol, StartPos: startPos, EndPos: endPos}
		} else {
			tok = Token{Type: STRING, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: endPos}
		}
	case '.':
		literal := string(l.ch)
		l.readChar()
		tok = Token{Type: DOT, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	case 0: // EOF
		tok = Token{Type: EOF, Literal: "", Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
	default:
		if isLetter(l.ch) {
			literal := l.readIdentifier() // Consumes letters/digits/_
			tokType := LookupIdent(literal)
			// readIdentifier leaves l.position *after* the last char of the identifier
			tok = Token{Type: tokType, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
			return tok // Return early, readIdentifier already called readChar()
		} else if isDigit(l.ch) {
			literal := l.readNumber() // Consumes digits and potentially '.'
			tok = Token{Type: NUMBER, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
			return tok // Return early, readNumber already called readChar()
		} else {
			// Illegal character
			literal := string(l.ch)
			l.readChar() // Consume the illegal character
			tok = Token{Type: ILLEGAL, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}
	}

	return tok
}

// ScanMarkupFrom rescans the input starting at the byte offset of a '<' that
// begins an embedded markup element, consuming the whole balanced element and
// returning its raw text. On success the lexer is positioned after the
// element. On failure the lexer is left untouched and ok is false.
// The parser uses this when '<' appears in expression prefix position.
func (l *Lexer) ScanMarkupFrom(startPos int) (raw string, ok bool) {
	if startPos < 0 || startPos >= len(l.input) || l.input[startPos] != '<' {
		return "", false
	}
	// Tag must open with a letter: "< 3" is a comparison, not markup.
	if startPos+1 >= len(l.input) || !isLetter(l.input[startPos+1]) {
		return "", false
	}

	depth := 0
	inTag := false
	closing := false
	selfClose := false
	var quote byte
	i := startPos
	for i < len(l.input) {
		ch := l.input[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			i++
			continue
		}
		switch ch {
		case '"', '\'':
			if inTag {
				quote = ch
			}
		case '<':
			inTag = true
			selfClose = false
			closing = i+1 < len(l.input) && l.input[i+1] == '/'
		case '/':
			if inTag && i+1 < len(l.input) && l.input[i+1] == '>' {
				selfClose = true
			}
		case '>':
			if inTag {
				inTag = false
				if closing {
					depth--
				} else if !selfClose {
					depth++
				}
				done := depth <= 0 && (closing || selfClose)
				closing = false
				selfClose = false
				if done {
					end := i + 1
					l.SetPosition(end)
					return l.input[startPos:end], true
				}
			}
		}
		i++
	}
	return "", false // unterminated markup
}

// readIdentifier reads an identifier (letters, digits, _) and advances the lexer's position.
func (l *Lexer) readIdentifier() string {
	startPos := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[startPos:l.position]
}

// readNumber reads a number literal (integer or float) and advances the
// lexer's position. Returns the raw literal string found.
func (l *Lexer) readNumber() string {
	startPos := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	// Fractional part: only if the dot is followed by a digit, so member
	// access off a number stays a DOT token.
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // Consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[startPos:l.position]
}

// readString reads a string literal enclosed in the given quote character.
// It handles basic escape sequences: \n, \t, \r, \\, and escaped quotes.
// Returns the unescaped string content and a boolean indicating success.
// Advances the lexer's position to *after* the closing quote if successful.
func (l *Lexer) readString(quote byte) (string, bool) {
	var builder strings.Builder
	// Consume the opening quote
	l.readChar()

	for {
		// Check for termination conditions *before* processing the character
		if l.ch == quote {
			l.readChar() // Consume the closing quote
			return builder.String(), true
		}
		if l.ch == 0 { // EOF
			// Unterminated string
			return "", false
		}

		if l.ch == '\\' { // Handle escape sequence
			l.readChar() // Consume the backslash
			switch l.ch {
			case 'n':
				builder.WriteByte('\n')
			case 't':
				builder.WriteByte('\t')
			case 'r':
				builder.WriteByte('\r')
			case '\\':
				builder.WriteByte('\\')
			case quote: // Handle escaped quote (' or ")
				builder.WriteByte(quote)
			case 0: // EOF after backslash
				return "", false
			default:
				// Invalid escape sequence (e.g., \z)
				return "", false
			}
		} else {
			// Unescaped newline terminates the literal with an error
			if l.ch == '\n' || l.ch == '\r' {
				return "", false
			}
			builder.WriteByte(l.ch)
		}

		// Advance to the next character *after* processing the current one
		l.readChar()
	}
}

// skipComment reads until the end of the line.
func (l *Lexer) skipComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	// Don't skip the newline itself, let skipWhitespace handle it
}

// skipMultilineComment reads until the end of the multiline comment.
// Returns true if the comment is terminated successfully, false otherwise.
func (l *Lexer) skipMultilineComment() bool {
	// Consume the opening '/*'
	l.readChar() // Consume '/'
	l.readChar() // Consume '*'

	for {
		if l.ch == 0 { // Reached EOF before finding closing */
			return false
		}

		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // Consume '*'
			l.readChar() // Consume '/'
			return true
		}

		l.readChar()
	}
}

// isLetter checks if the character is a letter or underscore.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

// isDigit checks if the character is a digit.
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
