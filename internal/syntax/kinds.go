package syntax

// Kind is the closed set of node categories the engine dispatches on.
// Grammar node types that the engine never inspects map to KindOther.
type Kind uint8

const (
	KindOther Kind = iota
	KindError

	KindProgram
	KindClassDeclaration
	KindClassExpression
	KindClassBody
	KindInterfaceDeclaration
	KindInterfaceBody
	KindObjectType
	KindTypeAlias
	KindEnumDeclaration
	KindNamespace

	KindFunctionDeclaration
	KindFunctionExpression
	KindArrowFunction
	KindMethodDefinition
	KindMethodSignature
	KindPropertySignature
	KindIndexSignature
	KindFieldDefinition

	KindFormalParameters
	KindRequiredParameter
	KindOptionalParameter
	KindAssignmentPattern
	KindRestPattern
	KindObjectPattern
	KindArrayPattern
	KindPairPattern
	KindShorthandPropertyPattern
	KindObjectAssignmentPattern

	KindLexicalDeclaration
	KindVariableDeclaration
	KindVariableDeclarator

	KindExpressionStatement
	KindStatementBlock
	KindReturnStatement
	KindIfStatement
	KindElseClause
	KindForStatement
	KindForInStatement
	KindWhileStatement
	KindDoStatement
	KindTryStatement
	KindCatchClause
	KindFinallyClause
	KindSwitchStatement
	KindSwitchBody
	KindSwitchCase
	KindSwitchDefault
	KindThrowStatement
	KindBreakStatement
	KindContinueStatement
	KindLabeledStatement
	KindExportStatement
	KindImportStatement

	KindCallExpression
	KindNewExpression
	KindMemberExpression
	KindSubscriptExpression
	KindAssignmentExpression
	KindAugmentedAssignment
	KindUpdateExpression
	KindAwaitExpression
	KindBinaryExpression
	KindUnaryExpression
	KindTernaryExpression
	KindParenthesizedExpression
	KindAsExpression
	KindSatisfiesExpression
	KindNonNullExpression

	KindIdentifier
	KindPropertyIdentifier
	KindPrivatePropertyIdentifier
	KindShorthandPropertyIdentifier
	KindTypeIdentifier
	KindThis
	KindSuper

	KindObject
	KindPair
	KindArray
	KindSpreadElement
	KindString
	KindTemplateString
	KindNumber
	KindTrue
	KindFalse
	KindNull
	KindUndefined
	KindRegex

	KindTypeAnnotation
	KindAccessibilityModifier
	KindDecorator
	KindComputedPropertyName
	KindComment

	KindJSXElement
	KindJSXSelfClosingElement
	KindJSXOpeningElement
	KindJSXClosingElement

	kindCount
)

// kindByType maps tree-sitter node types of the TypeScript, TSX and
// JavaScript grammars onto engine kinds. Several grammar versions spell the
// same construct differently, so aliases share a kind.
var kindByType = map[string]Kind{
	"ERROR": KindError,

	"program":                    KindProgram,
	"class_declaration":          KindClassDeclaration,
	"abstract_class_declaration": KindClassDeclaration,
	"class":                      KindClassExpression,
	"class_body":                 KindClassBody,
	"interface_declaration":      KindInterfaceDeclaration,
	"interface_body":             KindInterfaceBody,
	"object_type":                KindObjectType,
	"type_alias_declaration":     KindTypeAlias,
	"enum_declaration":           KindEnumDeclaration,
	"internal_module":            KindNamespace,
	"module":                     KindNamespace,

	"function_declaration":           KindFunctionDeclaration,
	"generator_function_declaration": KindFunctionDeclaration,
	"function_expression":            KindFunctionExpression,
	"function":                       KindFunctionExpression,
	"generator_function":             KindFunctionExpression,
	"arrow_function":                 KindArrowFunction,
	"method_definition":              KindMethodDefinition,
	"method_signature":               KindMethodSignature,
	"abstract_method_signature":      KindMethodSignature,
	"property_signature":             KindPropertySignature,
	"index_signature":                KindIndexSignature,
	"public_field_definition":        KindFieldDefinition,
	"field_definition":               KindFieldDefinition,

	"formal_parameters":                     KindFormalParameters,
	"required_parameter":                    KindRequiredParameter,
	"optional_parameter":                    KindOptionalParameter,
	"assignment_pattern":                    KindAssignmentPattern,
	"rest_pattern":                          KindRestPattern,
	"object_pattern":                        KindObjectPattern,
	"array_pattern":                         KindArrayPattern,
	"pair_pattern":                          KindPairPattern,
	"shorthand_property_identifier_pattern": KindShorthandPropertyPattern,
	"object_assignment_pattern":             KindObjectAssignmentPattern,

	"lexical_declaration":  KindLexicalDeclaration,
	"variable_declaration": KindVariableDeclaration,
	"variable_declarator":  KindVariableDeclarator,

	"expression_statement": KindExpressionStatement,
	"statement_block":      KindStatementBlock,
	"return_statement":     KindReturnStatement,
	"if_statement":         KindIfStatement,
	"else_clause":          KindElseClause,
	"for_statement":        KindForStatement,
	"for_in_statement":     KindForInStatement,
	"while_statement":      KindWhileStatement,
	"do_statement":         KindDoStatement,
	"try_statement":        KindTryStatement,
	"catch_clause":         KindCatchClause,
	"finally_clause":       KindFinallyClause,
	"switch_statement":     KindSwitchStatement,
	"switch_body":          KindSwitchBody,
	"switch_case":          KindSwitchCase,
	"switch_default":       KindSwitchDefault,
	"throw_statement":      KindThrowStatement,
	"break_statement":      KindBreakStatement,
	"continue_statement":   KindContinueStatement,
	"labeled_statement":    KindLabeledStatement,
	"export_statement":     KindExportStatement,
	"import_statement":     KindImportStatement,

	"call_expression":                 KindCallExpression,
	"new_expression":                  KindNewExpression,
	"member_expression":               KindMemberExpression,
	"subscript_expression":            KindSubscriptExpression,
	"assignment_expression":           KindAssignmentExpression,
	"augmented_assignment_expression": KindAugmentedAssignment,
	"update_expression":               KindUpdateExpression,
	"await_expression":                KindAwaitExpression,
	"binary_expression":               KindBinaryExpression,
	"unary_expression":                KindUnaryExpression,
	"ternary_expression":              KindTernaryExpression,
	"parenthesized_expression":        KindParenthesizedExpression,
	"as_expression":                   KindAsExpression,
	"satisfies_expression":            KindSatisfiesExpression,
	"non_null_expression":             KindNonNullExpression,

	"identifier":                    KindIdentifier,
	"property_identifier":           KindPropertyIdentifier,
	"private_property_identifier":   KindPrivatePropertyIdentifier,
	"shorthand_property_identifier": KindShorthandPropertyIdentifier,
	"type_identifier":               KindTypeIdentifier,
	"this":                          KindThis,
	"super":                         KindSuper,

	"object":          KindObject,
	"pair":            KindPair,
	"array":           KindArray,
	"spread_element":  KindSpreadElement,
	"string":          KindString,
	"template_string": KindTemplateString,
	"number":          KindNumber,
	"true":            KindTrue,
	"false":           KindFalse,
	"null":            KindNull,
	"undefined":       KindUndefined,
	"regex":           KindRegex,

	"type_annotation":        KindTypeAnnotation,
	"accessibility_modifier": KindAccessibilityModifier,
	"decorator":              KindDecorator,
	"computed_property_name": KindComputedPropertyName,
	"comment":                KindComment,

	"jsx_element":              KindJSXElement,
	"jsx_self_closing_element": KindJSXSelfClosingElement,
	"jsx_opening_element":      KindJSXOpeningElement,
	"jsx_closing_element":      KindJSXClosingElement,
}

// KindOf returns the engine kind for a grammar node type.
func KindOf(nodeType string) Kind {
	if k, ok := kindByType[nodeType]; ok {
		return k
	}
	return KindOther
}

// IsFunctionLike reports whether nodes of this kind own a parameter list and a body.
func (k Kind) IsFunctionLike() bool {
	switch k {
	case KindFunctionDeclaration, KindFunctionExpression, KindArrowFunction, KindMethodDefinition:
		return true
	}
	return false
}

// IsDeclaration reports whether the kind introduces a named declaration.
func (k Kind) IsDeclaration() bool {
	switch k {
	case KindClassDeclaration, KindInterfaceDeclaration, KindTypeAlias, KindEnumDeclaration,
		KindNamespace, KindFunctionDeclaration, KindMethodDefinition, KindMethodSignature,
		KindPropertySignature, KindFieldDefinition, KindVariableDeclarator:
		return true
	}
	return false
}

// IsStatementList reports whether children of this kind are statements.
func (k Kind) IsStatementList() bool {
	switch k {
	case KindProgram, KindStatementBlock, KindSwitchCase, KindSwitchDefault:
		return true
	}
	return false
}
