package javaquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassesExtending(t *testing.T) {
	source := []byte(`package com.example;

// extends WebSecurityConfigurerAdapter in a comment does not count
public class A extends WebSecurityConfigurerAdapter {
    String s = "class B extends WebSecurityConfigurerAdapter {}";
}

class C extends SomethingElse {}
`)

	spans := ClassesExtending(source, "WebSecurityConfigurerAdapter")
	require.Len(t, spans, 1)
	assert.Equal(t, uint32(4), spans[0].Line)
	assert.Less(t, spans[0].StartByte, spans[0].EndByte)

	assert.Empty(t, ClassesExtending(source, "WebMvcConfigurer"))
	assert.Empty(t, ClassesExtending([]byte("not java at all {{{"), "WebSecurityConfigurerAdapter"))
}

func TestAnnotations(t *testing.T) {
	source := []byte(`import org.hibernate.annotations.Type;

@TypeDef(name = "json", typeClass = JsonType.class)
public class E {
    @Type(type = "json")
    private String a;

    @Type
    private String b;
}
`)

	t.Run("argument form only", func(t *testing.T) {
		spans := Annotations(source, "Type", true)
		require.Len(t, spans, 1)
		assert.Equal(t, uint32(5), spans[0].Line)
	})

	t.Run("marker form included", func(t *testing.T) {
		spans := Annotations(source, "Type", false)
		assert.Len(t, spans, 2)
	})

	t.Run("matches by exact annotation name", func(t *testing.T) {
		spans := Annotations(source, "TypeDef", true)
		require.Len(t, spans, 1)
		assert.Equal(t, uint32(3), spans[0].Line)
	})
}

func TestHasSyntaxError(t *testing.T) {
	assert.False(t, HasSyntaxError([]byte("public class Ok { void m() {} }")))
	assert.True(t, HasSyntaxError([]byte("public class Broken { void m( {")))
}
